package delivery

import (
	"context"
	"errors"
	"time"

	"campuseats/internal/apperr"
	"campuseats/internal/domain"
	"campuseats/internal/logx"
	"campuseats/internal/ports/ordertx"
)

// Service manages post-acceptance courier states and the code-gated
// hand-off. Only the assigned courier may advance the delivery.
type Service struct {
	repo             orderRepository
	factory          CodeFactory
	notifier         Notifier
	delivered        counter
	codeFailures     counter
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewDeliveryService - creates a new delivery Service.
func NewDeliveryService(
	repo orderRepository,
	factory CodeFactory,
	notifier Notifier,
	delivered, codeFailures counter,
	timeout time.Duration,
	logger logx.Logger,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             repo,
		factory:          factory,
		notifier:         notifier,
		delivered:        delivered,
		codeFailures:     codeFailures,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Advance moves the delivery one step along
// assigned → picked_up → on_the_way → reached. The final step to
// delivered is reachable only through VerifyCode. Entering reached issues
// the hand-off code and notifies the customer.
func (s *Service) Advance(ctx context.Context, orderID, courierID string, next domain.DeliveryStatus) (*domain.Order, error) {
	if !next.Valid() {
		return nil, apperr.ErrInvalidDeliveryStatus
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.Order
	var issued string
	err := s.retryConflict(func() error {
		issued = ""
		o, err := s.repo.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if o.AssignedCourierID != courierID {
			return apperr.ErrForbidden
		}
		// an unconfirmed assignment must be accepted before pickup
		if o.DeliveryStatus == domain.DeliveryAssigned && o.AssignmentDeadline != nil {
			return apperr.ErrInvalidTransition
		}
		if !o.DeliveryStatus.CanAdvance(next) {
			return apperr.ErrInvalidDeliveryStatus
		}

		o.DeliveryStatus = next
		if next == domain.DeliveryReached {
			code, expiresAt, err := s.factory.Generate(s.now())
			if err != nil {
				return err
			}
			o.DeliveryCode = code
			o.CodeExpiresAt = &expiresAt
			issued = code
		}

		if err := s.persist(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if issued != "" && s.notifier != nil {
		s.notifier.DeliveryCodeIssued(out.ID, out.CustomerID, issued, *out.CodeExpiresAt)
	}

	s.logger.Info("delivery status advanced",
		logx.String("order_id", orderID),
		logx.String("courier_id", courierID),
		logx.String("status", string(next)),
	)
	return out, nil
}

// RegenerateCode issues a fresh hand-off code for an order the courier
// already reached, replacing the previous one.
func (s *Service) RegenerateCode(ctx context.Context, orderID, courierID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var customerID, issued string
	var expiry time.Time
	err := s.retryConflict(func() error {
		o, err := s.repo.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if o.AssignedCourierID != courierID {
			return apperr.ErrForbidden
		}
		if o.DeliveryStatus != domain.DeliveryReached {
			return apperr.ErrInvalidTransition
		}

		code, expiresAt, err := s.factory.Generate(s.now())
		if err != nil {
			return err
		}
		o.DeliveryCode = code
		o.CodeExpiresAt = &expiresAt

		if err := s.persist(ctx, o); err != nil {
			return err
		}
		customerID, issued, expiry = o.CustomerID, code, expiresAt
		return nil
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.DeliveryCodeIssued(orderID, customerID, issued, expiry)
	}
	return nil
}

// VerifyCode completes the hand-off: with the correct unexpired code the
// order becomes delivered, the code is consumed and every still-ready
// sub-order is promoted to delivered.
func (s *Service) VerifyCode(ctx context.Context, orderID, courierID, code string) (*domain.Order, error) {
	if code == "" {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.Order
	err := s.retryConflict(func() error {
		o, err := s.repo.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if o.AssignedCourierID != courierID {
			return apperr.ErrForbidden
		}
		if o.DeliveryStatus != domain.DeliveryReached {
			return apperr.ErrInvalidTransition
		}
		if o.DeliveryCode == "" || o.CodeExpiresAt == nil {
			return apperr.ErrNoCodeIssued
		}
		if s.now().After(*o.CodeExpiresAt) {
			inc(s.codeFailures)
			return apperr.ErrCodeExpired
		}
		if o.DeliveryCode != code {
			inc(s.codeFailures)
			return apperr.ErrInvalidCode
		}

		o.DeliveryStatus = domain.DeliveryDelivered
		o.DeliveryCode = ""
		o.CodeExpiresAt = nil
		o.RejectedCouriers = nil

		err = s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
			if err := tx.UpdateOrderAssignment(ctx, o); err != nil {
				return err
			}
			return tx.PromoteReadySubOrders(ctx, o.ID)
		})
		if err != nil {
			return err
		}
		for i := range o.SubOrders {
			if o.SubOrders[i].Status == domain.SubOrderReady {
				o.SubOrders[i].Status = domain.SubOrderDelivered
			}
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	inc(s.delivered)
	s.logger.Info("order delivered",
		logx.String("event", "order_delivered"),
		logx.String("order_id", orderID),
		logx.String("courier_id", courierID),
	)
	return out, nil
}

func (s *Service) retryConflict(fn func() error) error {
	err := fn()
	if errors.Is(err, apperr.ErrConflict) {
		err = fn()
	}
	return err
}

func (s *Service) persist(ctx context.Context, o *domain.Order) error {
	return s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		return tx.UpdateOrderAssignment(ctx, o)
	})
}

func inc(c counter) {
	if c != nil {
		c.Inc()
	}
}
