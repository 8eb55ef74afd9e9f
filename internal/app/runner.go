package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"campuseats/internal/logx"
	"campuseats/internal/notify"
)

// MustRun starts the HTTP server using the provided DI container
func MustRun(container *dig.Container) {
	if err := run(container); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Println("shutdown requested, exiting")
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Println("startup aborted: startup timeout exceeded")
			return
		default:
			log.Fatalf("run error: %v", err)
		}
	}
}

func run(container *dig.Container) error {
	return container.Invoke(func(
		server *http.Server,
		ctx context.Context,
		pool *pgxpool.Pool,
		dispatcher *notify.Dispatcher,
		closeSender senderCloser,
		logger logx.Logger,
	) error {
		dispCtx, stopDispatch := context.WithCancel(context.Background())
		go func() {
			if err := dispatcher.Run(dispCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("dispatcher stopped", logx.Err(err))
			}
		}()

		startServer(server, logger)
		waitForShutdown(ctx, logger)
		gracefulShutdown(server, logger, 15*time.Second)
		stopDispatch()
		closeResources(pool, server, closeSender, logger)
		return nil
	})
}

func startServer(server *http.Server, logger logx.Logger) {
	go func() {
		logger.Info("service-order listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()
}

func waitForShutdown(ctx context.Context, logger logx.Logger) {
	<-ctx.Done()
	logger.Info("shutting down service-order")
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(pool *pgxpool.Pool, server *http.Server, closeSender senderCloser, logger logx.Logger) {
	if err := server.Close(); err != nil {
		logger.Error("server close error", logx.Err(err))
	}
	if closeSender != nil {
		if err := closeSender(); err != nil {
			logger.Error("notifications close error", logx.Err(err))
		}
	}
	pool.Close()
}
