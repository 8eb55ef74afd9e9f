package domain

import "time"

// OrderItem is a single position inside a shop sub-order. UnitPrice is a
// snapshot taken at checkout and never follows later catalog changes.
type OrderItem struct {
	ID        int64
	ItemID    string
	Name      string
	UnitPrice float64
	Quantity  int
}

// ShopSubOrder is the portion of a multi-shop order belonging to one shop.
// Status is owned by the shop operator; the order only reads it to decide
// readiness for assignment.
type ShopSubOrder struct {
	ID       int64
	ShopID   string
	OwnerID  string
	Status   SubOrderStatus
	Subtotal float64
	Items    []OrderItem
}

// Order - root aggregate of the delivery-assignment engine.
type Order struct {
	ID                 string
	CustomerID         string
	PaymentStatus      PaymentStatus
	DeliveryStatus     DeliveryStatus
	AssignedCourierID  string
	AssignmentDeadline *time.Time
	RejectedCouriers   []string
	AssignmentAttempts int
	DeliveryCode       string
	CodeExpiresAt      *time.Time
	DeliveryFee        float64
	FloorNumber        int
	SubOrders          []ShopSubOrder
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MaxAssignmentAttempts is the hard ceiling of automatic assignment cycles
// per order. Once reached, assignment stops until an operator resets it.
const MaxAssignmentAttempts = 10

// ReadyForAssignment reports whether every sub-order is in a
// terminal-for-kitchen state, i.e. no shop is still pending or preparing.
func (o *Order) ReadyForAssignment() bool {
	if len(o.SubOrders) == 0 {
		return false
	}
	for _, so := range o.SubOrders {
		if !so.Status.Terminal() {
			return false
		}
	}
	return true
}

// AnySubOrderReady reports whether at least one sub-order is still ready.
func (o *Order) AnySubOrderReady() bool {
	for _, so := range o.SubOrders {
		if so.Status == SubOrderReady {
			return true
		}
	}
	return false
}

// HasRejected reports whether the courier already declined the current
// assignment cycle of this order.
func (o *Order) HasRejected(courierID string) bool {
	for _, id := range o.RejectedCouriers {
		if id == courierID {
			return true
		}
	}
	return false
}

// SubOrderByShop returns the sub-order belonging to shopID, nil when absent.
func (o *Order) SubOrderByShop(shopID string) *ShopSubOrder {
	for i := range o.SubOrders {
		if o.SubOrders[i].ShopID == shopID {
			return &o.SubOrders[i]
		}
	}
	return nil
}

// Subtotal recomputes the sub-order total from its item snapshots.
func (s *ShopSubOrder) SubtotalFromItems() float64 {
	var sum float64
	for _, it := range s.Items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return sum
}
