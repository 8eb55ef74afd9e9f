package orders

import (
	"context"

	"campuseats/internal/domain"
	"campuseats/internal/ports/ordertx"
)

type orderRepository interface {
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// SchedulerPort abstracts the subset of the assignment scheduler the
// processor needs when reacting to shop-status changes.
type SchedulerPort interface {
	Trigger(ctx context.Context, orderID string) (*domain.Assignment, error)
	Invalidate(orderID string)
}
