package delivery

import (
	"context"
	"time"

	"campuseats/internal/domain"
	"campuseats/internal/ports/ordertx"
)

type orderRepository interface {
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// CodeFactory produces hand-off codes with their expiry.
type CodeFactory interface {
	Generate(now time.Time) (code string, expiresAt time.Time, err error)
}

// Notifier dispatches fire-and-forget notifications. Implementations must
// never block the caller; failures are logged, not returned.
type Notifier interface {
	DeliveryCodeIssued(orderID, customerID, code string, expiresAt time.Time)
}

type counter interface {
	Inc()
}
