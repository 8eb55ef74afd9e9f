package handlers

import (
	"time"

	"campuseats/internal/domain"
)

// The hand-off code and the rejected-courier set never leave the service,
// so the response DTO carries neither.
type orderResponse struct {
	ID                 string             `json:"id"`
	CustomerID         string             `json:"customer_id"`
	PaymentStatus      string             `json:"payment_status"`
	DeliveryStatus     string             `json:"delivery_status"`
	AssignedCourierID  string             `json:"assigned_courier_id,omitempty"`
	AssignmentDeadline *time.Time         `json:"assignment_deadline,omitempty"`
	AssignmentAttempts int                `json:"assignment_attempts"`
	DeliveryFee        float64            `json:"delivery_fee"`
	FloorNumber        int                `json:"floor_number"`
	SubOrders          []subOrderResponse `json:"sub_orders"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type subOrderResponse struct {
	ShopID   string         `json:"shop_id"`
	Status   string         `json:"status"`
	Subtotal float64        `json:"subtotal"`
	Items    []itemResponse `json:"items"`
}

type itemResponse struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type assignmentResponse struct {
	OrderID   string    `json:"order_id"`
	CourierID string    `json:"courier_id"`
	Deadline  time.Time `json:"deadline"`
	Attempt   int       `json:"attempt"`
}

func orderToResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		ID:                 o.ID,
		CustomerID:         o.CustomerID,
		PaymentStatus:      string(o.PaymentStatus),
		DeliveryStatus:     string(o.DeliveryStatus),
		AssignedCourierID:  o.AssignedCourierID,
		AssignmentDeadline: o.AssignmentDeadline,
		AssignmentAttempts: o.AssignmentAttempts,
		DeliveryFee:        o.DeliveryFee,
		FloorNumber:        o.FloorNumber,
		SubOrders:          make([]subOrderResponse, 0, len(o.SubOrders)),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	for _, so := range o.SubOrders {
		resp.SubOrders = append(resp.SubOrders, subOrderToResponse(so))
	}
	return resp
}

func subOrderToResponse(so domain.ShopSubOrder) subOrderResponse {
	out := subOrderResponse{
		ShopID:   so.ShopID,
		Status:   string(so.Status),
		Subtotal: so.Subtotal,
		Items:    make([]itemResponse, 0, len(so.Items)),
	}
	for _, it := range so.Items {
		out.Items = append(out.Items, itemResponse{
			ItemID:    it.ItemID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	return out
}

func ordersToResponse(list []*domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, orderToResponse(o))
	}
	return out
}

func assignmentToResponse(a *domain.Assignment) assignmentResponse {
	return assignmentResponse{
		OrderID:   a.OrderID,
		CourierID: a.CourierID,
		Deadline:  a.Deadline,
		Attempt:   a.Attempt,
	}
}
