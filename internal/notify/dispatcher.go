package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"campuseats/internal/logx"
)

// Dispatcher queues notifications and delivers them asynchronously, so a
// slow or failing sender never blocks or rolls back the state transition
// that produced the notification. A full queue drops the message with a
// log entry instead of blocking the caller.
type Dispatcher struct {
	sender   Sender
	queue    chan Notification
	failures counter
	logger   logx.Logger
	now      func() time.Time
}

// NewDispatcher creates a Dispatcher with the given queue capacity.
func NewDispatcher(sender Sender, capacity int, failures counter, logger logx.Logger) *Dispatcher {
	if capacity <= 0 {
		capacity = 256
	}
	return &Dispatcher{
		sender:   sender,
		queue:    make(chan Notification, capacity),
		failures: failures,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run drains the queue until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-d.queue:
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) {
	if d.sender == nil {
		d.logger.Debug("notification sink not configured",
			logx.String("kind", n.Kind),
			logx.String("order_id", n.OrderID),
		)
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.sender.Send(sendCtx, n); err != nil {
		if d.failures != nil {
			d.failures.Inc()
		}
		d.logger.Error("notification dispatch failed",
			logx.String("kind", n.Kind),
			logx.String("order_id", n.OrderID),
			logx.String("user_id", n.UserID),
			logx.Err(err),
		)
	}
}

func (d *Dispatcher) enqueue(n Notification) {
	n.ID = uuid.NewString()
	select {
	case d.queue <- n:
	default:
		if d.failures != nil {
			d.failures.Inc()
		}
		d.logger.Error("notification queue full, dropping",
			logx.String("kind", n.Kind),
			logx.String("order_id", n.OrderID),
		)
	}
}

// CourierAssigned notifies a courier about a fresh assignment.
func (d *Dispatcher) CourierAssigned(orderID, courierID string, deadline time.Time) {
	d.enqueue(Notification{
		Kind:    KindCourierAssigned,
		OrderID: orderID,
		UserID:  courierID,
		Data: map[string]string{
			"deadline": deadline.Format(time.RFC3339),
		},
		At: d.now(),
	})
}

// DeliveryCodeIssued sends the hand-off code to the customer.
func (d *Dispatcher) DeliveryCodeIssued(orderID, customerID, code string, expiresAt time.Time) {
	d.enqueue(Notification{
		Kind:    KindDeliveryCode,
		OrderID: orderID,
		UserID:  customerID,
		Data: map[string]string{
			"code":       code,
			"expires_at": expiresAt.Format(time.RFC3339),
			"ttl_sec":    strconv.Itoa(int(time.Until(expiresAt) / time.Second)),
		},
		At: d.now(),
	})
}
