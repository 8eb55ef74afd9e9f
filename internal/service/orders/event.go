package orders

import "time"

// Event is a single shop-status event for one sub-order of an order.
type Event struct {
	OrderID   string    `json:"order_id"`
	ShopID    string    `json:"shop_id"`
	OwnerID   string    `json:"owner_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
