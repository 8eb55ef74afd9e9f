package notify

import (
	"context"
	"time"
)

// Notification kinds understood by downstream senders.
const (
	KindCourierAssigned = "courier_assigned"
	KindDeliveryCode    = "delivery_code"
)

// Notification is one outbound message for a user, delivered out-of-band
// by an external collaborator (email, push). ID deduplicates re-sent
// messages downstream.
type Notification struct {
	ID      string            `json:"id"`
	Kind    string            `json:"kind"`
	OrderID string            `json:"order_id"`
	UserID  string            `json:"user_id"`
	Data    map[string]string `json:"data,omitempty"`
	At      time.Time         `json:"at"`
}

// Sender delivers a single notification to the outbound channel.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

type counter interface {
	Inc()
}
