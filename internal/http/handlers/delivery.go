package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campuseats/internal/apperr"
	"campuseats/internal/domain"
	"campuseats/internal/http/middleware"
	"campuseats/internal/logx"
)

// DeliveryHandler handles the courier side of an order: accepting or
// rejecting an assignment, advancing the delivery and the code hand-off.
type DeliveryHandler struct {
	assignments assignmentUsecase
	delivery    deliveryUsecase
	logger      logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, a assignmentUsecase, d deliveryUsecase) *DeliveryHandler {
	return &DeliveryHandler{assignments: a, delivery: d, logger: logger}
}

func orderIDFromURL(logger logx.Logger, w http.ResponseWriter, r *http.Request) (string, bool) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		writeError(logger, w, r, http.StatusBadRequest, "invalid order id")
		return "", false
	}
	return orderID, true
}

// Accept handles POST /orders/{orderID}/accept. Only the currently
// assigned courier may accept, and only before the deadline.
func (h *DeliveryHandler) Accept(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromURL(h.logger, w, r)
	if !ok {
		return
	}
	actor, _ := middleware.ActorFrom(r.Context())

	o, err := h.assignments.Accept(r.Context(), orderID, actor.ID)
	if err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(o))
}

// Reject handles POST /orders/{orderID}/reject. The rejection itself
// always succeeds for the assigned courier; the body reports whether the
// order could be handed to someone else right away.
func (h *DeliveryHandler) Reject(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromURL(h.logger, w, r)
	if !ok {
		return
	}
	actor, _ := middleware.ActorFrom(r.Context())

	a, err := h.assignments.Reject(r.Context(), orderID, actor.ID)
	switch {
	case err == nil:
		resp := map[string]any{"message": "assignment rejected", "reassigned": false}
		if a != nil {
			resp["reassigned"] = true
			resp["assignment"] = assignmentToResponse(a)
		}
		writeJSON(h.logger, w, r, http.StatusOK, resp)
	case errors.Is(err, apperr.ErrNoCourierAvailable):
		// rejection persisted, the order just stays pending
		writeJSON(h.logger, w, r, http.StatusOK, map[string]any{
			"message":    "assignment rejected",
			"reassigned": false,
		})
	default:
		writeAppErr(h.logger, w, r, err)
	}
}

// Advance handles PATCH /orders/{orderID}/delivery-status.
func (h *DeliveryHandler) Advance(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromURL(h.logger, w, r)
	if !ok {
		return
	}

	var req advanceDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	actor, _ := middleware.ActorFrom(r.Context())

	o, err := h.delivery.Advance(r.Context(), orderID, actor.ID, domain.DeliveryStatus(req.Status))
	if err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(o))
}

// RegenerateCode handles POST /orders/{orderID}/otp: re-issues the
// hand-off code for an order the courier already reached.
func (h *DeliveryHandler) RegenerateCode(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromURL(h.logger, w, r)
	if !ok {
		return
	}
	actor, _ := middleware.ActorFrom(r.Context())

	if err := h.delivery.RegenerateCode(r.Context(), orderID, actor.ID); err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"message": "code sent to customer"})
}

// VerifyCode handles POST /orders/{orderID}/otp/verify: the correct code
// completes the delivery.
func (h *DeliveryHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromURL(h.logger, w, r)
	if !ok {
		return
	}

	var req verifyCodeRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	actor, _ := middleware.ActorFrom(r.Context())

	o, err := h.delivery.VerifyCode(r.Context(), orderID, actor.ID, req.Code)
	if err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(o))
}
