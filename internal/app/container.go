package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"campuseats/internal/config"
	"campuseats/internal/http/handlers"
	"campuseats/internal/http/router"
	"campuseats/internal/logx"
	"campuseats/internal/metrics"
	"campuseats/internal/notify"
	"campuseats/internal/repository"
	"campuseats/internal/service/assignment"
	"campuseats/internal/service/delivery"
	"campuseats/internal/service/earnings"
	"campuseats/internal/service/orders"
)

type senderCloser func() error

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// build builds and returns a new dig container
func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
		func() time.Duration { return 3 * time.Second },
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		pool, err := dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(cfg.DB.DSN()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return pool, nil
	}
	return provideAll(container, providerDB)
}

// registerCounter keeps container rebuilds (tests) from tripping the
// default registry's duplicate check.
func registerCounter(c prometheus.Counter) prometheus.Counter {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
	}
	return c
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewOrderRepo,
		repository.NewCourierDirectory,
		repository.NewEarningsRepo,
		func(cfg *config.Config) (*notify.KafkaSender, error) {
			return notify.NewKafkaSender(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic)
		},
		func(ks *notify.KafkaSender) senderCloser {
			if ks == nil {
				return nil
			}
			return ks.Close
		},
		func(ks *notify.KafkaSender, logger logx.Logger) *notify.Dispatcher {
			var sender notify.Sender
			if ks != nil {
				sender = ks
			}
			return notify.NewDispatcher(sender, 256, registerCounter(metrics.NewNotifyFailuresTotal()), logger)
		},
		func(
			repo *repository.OrderRepo,
			directory *repository.CourierDirectory,
			cfg *config.Config,
			dispatcher *notify.Dispatcher,
			timeout time.Duration,
			logger logx.Logger,
		) *assignment.Scheduler {
			return assignment.NewScheduler(
				repo,
				directory,
				assignment.NewPolicy(cfg.Assignment.AcceptWindow),
				dispatcher,
				assignment.NewTimers(),
				assignment.Counters{
					Assigned:  registerCounter(metrics.NewAssignmentsTotal()),
					Accepted:  registerCounter(metrics.NewAssignmentsAcceptedTotal()),
					Rejected:  registerCounter(metrics.NewAssignmentsRejectedTotal()),
					Expired:   registerCounter(metrics.NewAssignmentsExpiredTotal()),
					Exhausted: registerCounter(metrics.NewAssignmentsExhaustedTotal()),
				},
				timeout,
				logger,
			)
		},
		func(
			repo *repository.OrderRepo,
			cfg *config.Config,
			dispatcher *notify.Dispatcher,
			timeout time.Duration,
			logger logx.Logger,
		) *delivery.Service {
			return delivery.NewDeliveryService(
				repo,
				delivery.NewCodeFactory(cfg.Otp.TTL),
				dispatcher,
				registerCounter(metrics.NewOrdersDeliveredTotal()),
				registerCounter(metrics.NewCodeFailuresTotal()),
				timeout,
				logger,
			)
		},
		func(
			repo *repository.OrderRepo,
			scheduler *assignment.Scheduler,
			timeout time.Duration,
			logger logx.Logger,
		) *orders.Processor {
			return orders.NewProcessor(repo, scheduler, timeout, logger)
		},
		func(repo *repository.OrderRepo, timeout time.Duration, logger logx.Logger) *orders.Queries {
			return orders.NewQueries(repo, timeout, logger)
		},
		func(repo *repository.EarningsRepo, timeout time.Duration, logger logx.Logger) *earnings.Projector {
			return earnings.NewProjector(repo, timeout, logger)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		handlers.NewOrderQueryUsecase,
		handlers.NewShopStatusUsecase,
		handlers.NewAssignmentUsecase,
		handlers.NewDeliveryUsecase,
		handlers.NewEarningsUsecase,
		handlers.NewOrderHandler,
		handlers.NewDeliveryHandler,
		handlers.NewEarningsHandler,
		router.New,
		serverProvider,
	)
}
