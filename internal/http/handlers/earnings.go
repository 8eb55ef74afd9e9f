package handlers

import (
	"net/http"

	"campuseats/internal/http/middleware"
	"campuseats/internal/logx"
)

// EarningsHandler serves courier and owner earnings reports.
type EarningsHandler struct {
	usecase earningsUsecase
	logger  logx.Logger
}

// NewEarningsHandler creates a new EarningsHandler.
func NewEarningsHandler(logger logx.Logger, uc earningsUsecase) *EarningsHandler {
	return &EarningsHandler{usecase: uc, logger: logger}
}

// CourierToday handles GET /earnings/courier/today.
func (h *EarningsHandler) CourierToday(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	report, err := h.usecase.CourierToday(r.Context(), actor.ID)
	if err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, report)
}

// CourierMonth handles GET /earnings/courier/month.
func (h *EarningsHandler) CourierMonth(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	report, err := h.usecase.CourierMonth(r.Context(), actor.ID)
	if err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, report)
}

// OwnerToday handles GET /earnings/owner/today.
func (h *EarningsHandler) OwnerToday(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	report, err := h.usecase.OwnerToday(r.Context(), actor.ID)
	if err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, report)
}

// OwnerMonth handles GET /earnings/owner/month.
func (h *EarningsHandler) OwnerMonth(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	report, err := h.usecase.OwnerMonth(r.Context(), actor.ID)
	if err != nil {
		writeAppErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, report)
}
