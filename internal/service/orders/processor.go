package orders

import (
	"context"
	"errors"
	"time"

	"campuseats/internal/apperr"
	"campuseats/internal/domain"
	"campuseats/internal/logx"
	"campuseats/internal/ports/ordertx"
)

// Processor applies shop-status updates to orders and feeds the assignment
// scheduler. It serves both the owner HTTP endpoint and the Kafka consumer.
type Processor struct {
	repo             orderRepository
	scheduler        SchedulerPort
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewProcessor creates a new shop-status Processor.
func NewProcessor(repo orderRepository, scheduler SchedulerPort, timeout time.Duration, logger logx.Logger) *Processor {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Processor{
		repo:             repo,
		scheduler:        scheduler,
		operationTimeout: timeout,
		logger:           logger,
	}
}

// Handle processes a single shop-status Event from Kafka.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	_, err := p.Apply(ctx, e.OrderID, e.ShopID, e.OwnerID, domain.SubOrderStatus(e.Status))
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		// the order may belong to another deployment, skip
		p.logger.Warn("shop status event for unknown order",
			logx.String("order_id", e.OrderID),
			logx.String("shop_id", e.ShopID),
		)
		return nil
	case errors.Is(err, apperr.ErrOrderLocked), errors.Is(err, apperr.ErrInvalid):
		p.logger.Warn("shop status event dropped",
			logx.String("order_id", e.OrderID),
			logx.String("status", e.Status),
			logx.Err(err),
		)
		return nil
	}
	return err
}

// Apply updates the kitchen status of one sub-order and reacts to the
// change: a transition to ready triggers assignment once every shop is
// done; reversing a ready sub-order resets the assignment cycle. The
// reversal is forbidden once the courier holds the goods.
func (p *Processor) Apply(ctx context.Context, orderID, shopID, ownerID string, status domain.SubOrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, p.operationTimeout)
	defer cancel()

	var out *domain.Order
	var reversal, fullReset bool
	err := p.retryConflict(func() error {
		reversal, fullReset = false, false

		o, err := p.repo.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		so := o.SubOrderByShop(shopID)
		if so == nil {
			return apperr.ErrNotFound
		}
		if ownerID != "" && so.OwnerID != ownerID {
			return apperr.ErrForbidden
		}

		rollback := status == domain.SubOrderPending ||
			status == domain.SubOrderPreparing ||
			status == domain.SubOrderCancelled
		if rollback && (o.DeliveryStatus == domain.DeliveryPickedUp || o.DeliveryStatus == domain.DeliveryOnTheWay) {
			return apperr.ErrOrderLocked
		}

		reversal = so.Status == domain.SubOrderReady && rollback
		prev := so.Status
		so.Status = status

		return p.repo.WithTx(ctx, func(tx ordertx.Repository) error {
			if err := tx.UpdateSubOrderStatus(ctx, so.ID, status); err != nil {
				return err
			}
			if !reversal {
				out = o
				return nil
			}

			if o.AnySubOrderReady() {
				// some other shop is still ready, clear rejections so a
				// fresh cycle can start immediately
				o.AssignmentAttempts = 0
				o.RejectedCouriers = nil
			} else {
				fullReset = true
				o.AssignedCourierID = ""
				o.DeliveryStatus = domain.DeliveryNotAssigned
				o.AssignmentDeadline = nil
				o.AssignmentAttempts = 0
				o.RejectedCouriers = nil
			}
			if err := tx.UpdateOrderAssignment(ctx, o); err != nil {
				return err
			}
			p.logger.Info("shop status reversed",
				logx.String("order_id", o.ID),
				logx.String("shop_id", shopID),
				logx.String("from", string(prev)),
				logx.String("to", string(status)),
			)
			out = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if fullReset {
		p.scheduler.Invalidate(orderID)
	}
	if status == domain.SubOrderReady || (reversal && !fullReset) {
		if _, err := p.scheduler.Trigger(ctx, orderID); err != nil &&
			!errors.Is(err, apperr.ErrNoCourierAvailable) {
			p.logger.Error("assignment trigger failed",
				logx.String("order_id", orderID),
				logx.Err(err),
			)
		}
	}
	return out, nil
}

func (p *Processor) retryConflict(fn func() error) error {
	err := fn()
	if errors.Is(err, apperr.ErrConflict) {
		err = fn()
	}
	return err
}
