package handlers

import (
	"context"

	"campuseats/internal/domain"
	"campuseats/internal/service/assignment"
	"campuseats/internal/service/delivery"
	"campuseats/internal/service/earnings"
	"campuseats/internal/service/orders"
)

type orderQueryUsecase interface {
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	Available(ctx context.Context) ([]*domain.Order, error)
	ByCourier(ctx context.Context, courierID string) ([]*domain.Order, error)
}

// NewOrderQueryUsecase wires an orders.Queries into an orderQueryUsecase.
func NewOrderQueryUsecase(q *orders.Queries) orderQueryUsecase {
	return q
}

type shopStatusUsecase interface {
	Apply(ctx context.Context, orderID, shopID, ownerID string, status domain.SubOrderStatus) (*domain.Order, error)
}

// NewShopStatusUsecase wires an orders.Processor into a shopStatusUsecase.
func NewShopStatusUsecase(p *orders.Processor) shopStatusUsecase {
	return p
}

type assignmentUsecase interface {
	Accept(ctx context.Context, orderID, courierID string) (*domain.Order, error)
	Reject(ctx context.Context, orderID, courierID string) (*domain.Assignment, error)
}

// NewAssignmentUsecase wires an assignment.Scheduler into an assignmentUsecase.
func NewAssignmentUsecase(s *assignment.Scheduler) assignmentUsecase {
	return s
}

type deliveryUsecase interface {
	Advance(ctx context.Context, orderID, courierID string, next domain.DeliveryStatus) (*domain.Order, error)
	RegenerateCode(ctx context.Context, orderID, courierID string) error
	VerifyCode(ctx context.Context, orderID, courierID, code string) (*domain.Order, error)
}

// NewDeliveryUsecase wires a delivery.Service into a deliveryUsecase.
func NewDeliveryUsecase(svc *delivery.Service) deliveryUsecase {
	return svc
}

type earningsUsecase interface {
	CourierToday(ctx context.Context, courierID string) (*earnings.CourierReport, error)
	CourierMonth(ctx context.Context, courierID string) (*earnings.CourierReport, error)
	OwnerToday(ctx context.Context, ownerID string) (*earnings.OwnerReport, error)
	OwnerMonth(ctx context.Context, ownerID string) (*earnings.OwnerReport, error)
}

// NewEarningsUsecase wires an earnings.Projector into an earningsUsecase.
func NewEarningsUsecase(p *earnings.Projector) earningsUsecase {
	return p
}
