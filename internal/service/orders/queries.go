package orders

import (
	"context"
	"time"

	"campuseats/internal/apperr"
	"campuseats/internal/domain"
	"campuseats/internal/logx"
)

type orderLister interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListAvailable(ctx context.Context) ([]*domain.Order, error)
	ListByCourier(ctx context.Context, courierID string) ([]*domain.Order, error)
}

// Queries is the read side of the order surface: the courier-facing
// available feed, a courier's own orders and single-order lookup.
type Queries struct {
	repo             orderLister
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewQueries creates a new order Queries service.
func NewQueries(repo orderLister, timeout time.Duration, logger logx.Logger) *Queries {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Queries{repo: repo, operationTimeout: timeout, logger: logger}
}

// Get returns one order by id.
func (q *Queries) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, q.operationTimeout)
	defer cancel()

	o, err := q.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

// Available lists unassigned orders with at least one ready sub-order,
// lowest floor first, newest first within a floor.
func (q *Queries) Available(ctx context.Context) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, q.operationTimeout)
	defer cancel()
	return q.repo.ListAvailable(ctx)
}

// ByCourier lists the courier's active and past orders, newest first.
func (q *Queries) ByCourier(ctx context.Context, courierID string) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, q.operationTimeout)
	defer cancel()
	return q.repo.ListByCourier(ctx, courierID)
}
