package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"campuseats/internal/config"
	"campuseats/internal/logx"
	"campuseats/internal/notify"
	"campuseats/internal/service/assignment"
	"campuseats/internal/transport/kafka"
)

// WorkerRunner runs the worker loops
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the worker loops using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	cfg *config.Config,
	pool *pgxpool.Pool,
	logger logx.Logger,
	consumer *kafka.Consumer,
	dispatcher *notify.Dispatcher,
	scheduler *assignment.Scheduler,
	closeSender senderCloser,
) error {
	if consumer == nil {
		return fmt.Errorf("kafka consumer is nil: worker container misconfigured")
	}
	defer closeWorker(pool, logger, consumer, closeSender)

	logger.Info("service-order-worker started")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return consumer.Run(gCtx) })
	g.Go(func() error { return dispatcher.Run(gCtx) })
	g.Go(func() error { return sweepLoop(gCtx, scheduler, cfg.Assignment.SweepInterval, logger) })
	return g.Wait()
}

// sweepLoop periodically expires overdue assignments and re-triggers
// pending orders, covering timers lost to a restart.
func sweepLoop(ctx context.Context, scheduler *assignment.Scheduler, interval time.Duration, logger logx.Logger) error {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := scheduler.Sweep(ctx); err != nil {
				logger.Error("sweep failed", logx.Err(err))
			}
		}
	}
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, kafkaConsumer *kafka.Consumer, closeSender senderCloser) {
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if closeSender != nil {
		if err := closeSender(); err != nil {
			logger.Error("notifications close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
