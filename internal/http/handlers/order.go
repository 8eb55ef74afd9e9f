package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campuseats/internal/domain"
	"campuseats/internal/http/middleware"
	"campuseats/internal/logx"
)

// OrderHandler handles HTTP requests for order resources.
type OrderHandler struct {
	queries orderQueryUsecase
	shops   shopStatusUsecase
	logger  logx.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(logger logx.Logger, queries orderQueryUsecase, shops shopStatusUsecase) *OrderHandler {
	return &OrderHandler{queries: queries, shops: shops, logger: logger}
}

// Get handles GET /orders/{orderID}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.queries.Get(r.Context(), orderID)
	if err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(o))
}

// Available handles GET /orders/available: unassigned orders with at
// least one ready sub-order, for couriers browsing work.
func (h *OrderHandler) Available(w http.ResponseWriter, r *http.Request) {
	list, err := h.queries.Available(r.Context())
	if err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToResponse(list))
}

// My handles GET /orders/my: the calling courier's orders.
func (h *OrderHandler) My(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	list, err := h.queries.ByCourier(r.Context(), actor.ID)
	if err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToResponse(list))
}

// UpdateShopStatus handles PATCH /orders/{orderID}/shops/{shopID}/status.
// Owners move their sub-order through the kitchen states; reaching ready
// may start courier assignment, rolling back from ready may reset it.
func (h *OrderHandler) UpdateShopStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	shopID := chi.URLParam(r, "shopID")
	if orderID == "" || shopID == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order or shop id")
		return
	}

	var req updateShopStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	actor, _ := middleware.ActorFrom(r.Context())
	o, err := h.shops.Apply(r.Context(), orderID, shopID, actor.ID, domain.SubOrderStatus(req.Status))
	if err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(o))
}
