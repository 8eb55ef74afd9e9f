package assignment

import (
	"context"
	"errors"
	"time"

	"campuseats/internal/apperr"
	"campuseats/internal/domain"
	"campuseats/internal/logx"
	"campuseats/internal/ports/ordertx"
)

// Counters groups the prometheus counters observed by the scheduler.
// Any field may be nil.
type Counters struct {
	Assigned  counter
	Accepted  counter
	Rejected  counter
	Expired   counter
	Exhausted counter
}

func inc(c counter) {
	if c != nil {
		c.Inc()
	}
}

// Scheduler is the stateful assignment engine. Events for one order
// (trigger, accept, reject, deadline expiry) are serialized by a per-order
// lock; the first to acquire it and pass its precondition check wins, the
// rest observe the post-transition state and fail with a signaled error.
type Scheduler struct {
	repo             orderRepository
	directory        CourierDirectory
	policy           Policy
	notifier         Notifier
	timers           deadlineTimers
	locks            *keyedLocks
	counters         Counters
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewScheduler creates a new assignment Scheduler.
func NewScheduler(
	repo orderRepository,
	directory CourierDirectory,
	policy Policy,
	notifier Notifier,
	timers deadlineTimers,
	counters Counters,
	timeout time.Duration,
	logger logx.Logger,
) *Scheduler {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Scheduler{
		repo:             repo,
		directory:        directory,
		policy:           policy,
		notifier:         notifier,
		timers:           timers,
		locks:            newKeyedLocks(),
		counters:         counters,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Scheduler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Trigger attempts to start an assignment cycle for the order. It is
// idempotent: when preconditions do not hold (already assigned, a shop
// still cooking) it is a no-op returning (nil, nil). It returns
// apperr.ErrNoCourierAvailable when the order is assignable but nobody
// can be picked (empty pool or attempt cap reached).
func (s *Scheduler) Trigger(ctx context.Context, orderID string) (*domain.Assignment, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.retryAssign(ctx, orderID)
}

// retryAssign runs tryAssign, once more after an optimistic-write conflict.
func (s *Scheduler) retryAssign(ctx context.Context, orderID string) (*domain.Assignment, error) {
	a, err := s.tryAssign(ctx, orderID)
	if errors.Is(err, apperr.ErrConflict) {
		a, err = s.tryAssign(ctx, orderID)
	}
	return a, err
}

func (s *Scheduler) tryAssign(ctx context.Context, orderID string) (*domain.Assignment, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrNotFound
	}
	if o.DeliveryStatus != domain.DeliveryNotAssigned || !o.ReadyForAssignment() {
		return nil, nil
	}
	if o.AssignmentAttempts >= domain.MaxAssignmentAttempts {
		inc(s.counters.Exhausted)
		s.logger.Warn("assignment attempts exhausted",
			logx.String("order_id", o.ID),
			logx.Int("attempts", o.AssignmentAttempts),
		)
		return nil, apperr.ErrNoCourierAvailable
	}

	now := s.now()
	candidates, err := s.directory.Candidates(ctx, o.RejectedCouriers, midnight(now))
	if err != nil {
		return nil, err
	}

	pick, deadline, ok := s.policy.SelectNext(o, candidates, now)
	if !ok {
		s.logger.Warn("no courier available",
			logx.String("order_id", o.ID),
			logx.Int("attempts", o.AssignmentAttempts),
		)
		return nil, apperr.ErrNoCourierAvailable
	}

	o.AssignedCourierID = pick.Courier.ID
	o.DeliveryStatus = domain.DeliveryAssigned
	o.AssignmentDeadline = &deadline
	o.AssignmentAttempts++

	if err := s.persist(ctx, o); err != nil {
		return nil, err
	}

	a := &domain.Assignment{
		OrderID:   o.ID,
		CourierID: pick.Courier.ID,
		Deadline:  deadline,
		Attempt:   o.AssignmentAttempts,
	}

	s.timers.Arm(o.ID, deadline.Sub(now), func() {
		s.expireDeadline(o.ID)
	})
	if s.notifier != nil {
		s.notifier.CourierAssigned(a.OrderID, a.CourierID, a.Deadline)
	}
	inc(s.counters.Assigned)

	s.logger.Info("courier assigned",
		logx.String("event", "courier_assigned"),
		logx.String("order_id", a.OrderID),
		logx.String("courier_id", a.CourierID),
		logx.Int("attempt", a.Attempt),
		logx.Time("deadline", a.Deadline),
	)
	return a, nil
}

// Accept confirms the current assignment. Legal only for the assigned
// courier, in the assigned state, before the deadline. The deadline is
// cleared (the state stays assigned, now meaning confirmed) and the
// pending timer is disarmed.
func (s *Scheduler) Accept(ctx context.Context, orderID, courierID string) (*domain.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.Order
	err := s.retryMutation(func() error {
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
		if o.DeliveryStatus != domain.DeliveryAssigned || o.AssignmentDeadline == nil {
			return apperr.ErrInvalidTransition
		}
		if s.now().After(*o.AssignmentDeadline) {
			return apperr.ErrExpired
		}

		o.AssignmentDeadline = nil
		if err := s.persist(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.timers.Cancel(orderID)
	inc(s.counters.Accepted)
	s.logger.Info("assignment accepted",
		logx.String("order_id", orderID),
		logx.String("courier_id", courierID),
	)
	return out, nil
}

// Reject declines the current assignment on behalf of the courier: the
// courier joins the rejected set for this cycle, the order returns to
// not_assigned with the attempt counter bumped, and a new cycle is
// triggered immediately. The returned error is ErrNoCourierAvailable when
// the re-trigger could not pick anyone; the rejection itself is persisted
// either way.
func (s *Scheduler) Reject(ctx context.Context, orderID, courierID string) (*domain.Assignment, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.retryMutation(func() error {
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
		if o.DeliveryStatus != domain.DeliveryAssigned {
			return apperr.ErrInvalidTransition
		}
		return s.resetCycle(ctx, o, courierID)
	})
	if err != nil {
		return nil, err
	}

	s.timers.Cancel(orderID)
	inc(s.counters.Rejected)
	s.logger.Info("assignment rejected",
		logx.String("order_id", orderID),
		logx.String("courier_id", courierID),
	)
	return s.retryAssign(ctx, orderID)
}

// expireDeadline is the timer callback for an armed acceptance deadline.
func (s *Scheduler) expireDeadline(orderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.operationTimeout)
	defer cancel()
	if err := s.Expire(ctx, orderID); err != nil {
		s.logger.Error("deadline expiry failed",
			logx.String("order_id", orderID),
			logx.Err(err),
		)
	}
}

// Expire handles an acceptance deadline that passed with no response.
// The effect equals Reject attributed to the system: the unresponsive
// courier still joins the rejected set so it is not re-offered at once.
// A stale firing (already accepted, already reassigned) is a no-op.
func (s *Scheduler) Expire(ctx context.Context, orderID string) error {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	expired := false
	err := s.retryMutation(func() error {
		o, err := s.repo.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		// state + timestamp recheck guards against stale firings
		if o.DeliveryStatus != domain.DeliveryAssigned ||
			o.AssignmentDeadline == nil ||
			!s.now().After(*o.AssignmentDeadline) {
			expired = false
			return nil
		}
		expired = true
		return s.resetCycle(ctx, o, o.AssignedCourierID)
	})
	if err != nil || !expired {
		return err
	}

	inc(s.counters.Expired)
	s.logger.Info("assignment expired",
		logx.String("order_id", orderID),
	)
	_, err = s.retryAssign(ctx, orderID)
	if errors.Is(err, apperr.ErrNoCourierAvailable) {
		// expected outcome, stays pending until the next trigger or sweep
		return nil
	}
	return err
}

// resetCycle returns the order to not_assigned with rejectedCourier
// recorded and the attempt counter bumped.
func (s *Scheduler) resetCycle(ctx context.Context, o *domain.Order, rejectedCourier string) error {
	if rejectedCourier != "" && !o.HasRejected(rejectedCourier) {
		o.RejectedCouriers = append(o.RejectedCouriers, rejectedCourier)
	}
	o.AssignedCourierID = ""
	o.AssignmentDeadline = nil
	o.DeliveryStatus = domain.DeliveryNotAssigned
	o.AssignmentAttempts++
	return s.persist(ctx, o)
}

// Invalidate disarms any pending deadline timer for the order. Used when
// an operator reversal resets the cycle outside the scheduler.
func (s *Scheduler) Invalidate(orderID string) {
	s.timers.Cancel(orderID)
}

// Sweep re-triggers assignment for orders left pending (a courier may have
// become free with no new order event) and expires assignments whose
// deadline passed without an in-process timer, e.g. after a restart.
func (s *Scheduler) Sweep(ctx context.Context) error {
	overdue, err := s.repo.ListOverdueAssigned(ctx)
	if err != nil {
		return err
	}
	for _, id := range overdue {
		if err := s.Expire(ctx, id); err != nil {
			s.logger.Error("sweep expire failed", logx.String("order_id", id), logx.Err(err))
		}
	}

	pending, err := s.repo.ListAssignable(ctx, domain.MaxAssignmentAttempts)
	if err != nil {
		return err
	}
	for _, id := range pending {
		if _, err := s.Trigger(ctx, id); err != nil && !errors.Is(err, apperr.ErrNoCourierAvailable) {
			s.logger.Error("sweep trigger failed", logx.String("order_id", id), logx.Err(err))
		}
	}
	return nil
}

func (s *Scheduler) retryMutation(fn func() error) error {
	err := fn()
	if errors.Is(err, apperr.ErrConflict) {
		err = fn()
	}
	return err
}

func (s *Scheduler) persist(ctx context.Context, o *domain.Order) error {
	return s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		return tx.UpdateOrderAssignment(ctx, o)
	})
}

// midnight returns the start of the day containing t.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
