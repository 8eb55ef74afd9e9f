package app

import (
	"context"
	"fmt"

	"go.uber.org/dig"

	"campuseats/internal/config"
	"campuseats/internal/service/orders"
	"campuseats/internal/transport/kafka"
)

// MustBuildWorkerContainer builds the container for the worker binary:
// the Kafka shop-status consumer, the notification dispatcher and the
// assignment sweeper, without the HTTP surface.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

// MustBuildWorker builds and returns a new worker dig container
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
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
	if err := registerConsumer(container); err != nil {
		return nil, fmt.Errorf("kafka: %w", err)
	}
	return container, nil
}

func registerConsumer(container *dig.Container) error {
	return provideAll(container,
		func(p *orders.Processor) kafka.HandleFunc {
			return p.Handle
		},
		func(cfg *config.Config, h kafka.HandleFunc) (*kafka.Consumer, error) {
			return kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ShopStatusTopic, h)
		},
	)
}
