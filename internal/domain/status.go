package domain

type (
	// SubOrderStatus represents the kitchen-side status of a shop sub-order.
	SubOrderStatus string
	// DeliveryStatus represents the assignment/delivery state of an order.
	DeliveryStatus string
	// PaymentStatus represents the payment state of an order.
	PaymentStatus string
)

// List of possible sub-order statuses
const (
	SubOrderPending   SubOrderStatus = "pending"
	SubOrderPreparing SubOrderStatus = "preparing"
	SubOrderReady     SubOrderStatus = "ready"
	SubOrderDelivered SubOrderStatus = "delivered"
	SubOrderCancelled SubOrderStatus = "cancelled"
)

// List of possible delivery statuses
const (
	DeliveryNotAssigned DeliveryStatus = "not_assigned"
	DeliveryAssigned    DeliveryStatus = "assigned"
	DeliveryPickedUp    DeliveryStatus = "picked_up"
	DeliveryOnTheWay    DeliveryStatus = "on_the_way"
	DeliveryReached     DeliveryStatus = "reached"
	DeliveryDelivered   DeliveryStatus = "delivered"
)

// List of possible payment statuses
const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

var allowedSubOrderStatuses = [...]SubOrderStatus{
	SubOrderPending, SubOrderPreparing, SubOrderReady, SubOrderDelivered, SubOrderCancelled,
}

var allowedDeliveryStatuses = [...]DeliveryStatus{
	DeliveryNotAssigned, DeliveryAssigned, DeliveryPickedUp,
	DeliveryOnTheWay, DeliveryReached, DeliveryDelivered,
}

// Valid checks if the SubOrderStatus is valid
func (s SubOrderStatus) Valid() bool {
	for _, v := range allowedSubOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the DeliveryStatus is valid
func (s DeliveryStatus) Valid() bool {
	for _, v := range allowedDeliveryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the sub-order no longer needs kitchen work.
func (s SubOrderStatus) Terminal() bool {
	return s == SubOrderReady || s == SubOrderDelivered || s == SubOrderCancelled
}

// courierAdvance is the allow-list of courier-driven delivery progressions.
// "delivered" is reachable only through hand-off code verification.
var courierAdvance = map[DeliveryStatus]DeliveryStatus{
	DeliveryAssigned: DeliveryPickedUp,
	DeliveryPickedUp: DeliveryOnTheWay,
	DeliveryOnTheWay: DeliveryReached,
}

// CanAdvance reports whether a courier may move the delivery from cur to next.
func (s DeliveryStatus) CanAdvance(next DeliveryStatus) bool {
	allowed, ok := courierAdvance[s]
	return ok && allowed == next
}

// Active reports whether the status counts toward a courier's workload.
func (s DeliveryStatus) Active() bool {
	return s == DeliveryAssigned || s == DeliveryPickedUp || s == DeliveryOnTheWay
}
