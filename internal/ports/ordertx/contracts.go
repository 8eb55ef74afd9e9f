package ordertx

import (
	"context"

	"campuseats/internal/domain"
)

// Repository is the set of order mutations available inside a transaction.
// UpdateOrderAssignment is conditional on the order version read earlier;
// a stale version yields apperr.ErrConflict.
type Repository interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	UpdateOrderAssignment(ctx context.Context, o *domain.Order) error
	UpdateSubOrderStatus(ctx context.Context, subOrderID int64, status domain.SubOrderStatus) error
	PromoteReadySubOrders(ctx context.Context, orderID string) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
