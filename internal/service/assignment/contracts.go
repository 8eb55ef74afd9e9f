package assignment

import (
	"context"
	"time"

	"campuseats/internal/domain"
	"campuseats/internal/ports/ordertx"
)

type orderRepository interface {
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListAssignable(ctx context.Context, maxAttempts int) ([]string, error)
	ListOverdueAssigned(ctx context.Context) ([]string, error)
}

// CourierDirectory lists assignment candidates with ranking inputs attached.
type CourierDirectory interface {
	Candidates(ctx context.Context, excluded []string, midnight time.Time) ([]domain.Candidate, error)
}

// Notifier dispatches fire-and-forget notifications. Implementations must
// never block the caller; failures are logged, not returned.
type Notifier interface {
	CourierAssigned(orderID, courierID string, deadline time.Time)
}

// deadlineTimers arms and cancels the per-order acceptance deadline timer.
type deadlineTimers interface {
	Arm(orderID string, d time.Duration, fn func())
	Cancel(orderID string)
}

type counter interface {
	Inc()
}
