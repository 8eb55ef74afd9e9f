package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"campuseats/internal/apperr"
	"campuseats/internal/logx"
)

var validate = validator.New()

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error("json encode error",
			logx.String("req_id", reqID(r.Context())),
			logx.Err(err),
		)
	}
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	logger.Warn("http error",
		logx.String("req_id", reqID(r.Context())),
		logx.Int("status", status),
		logx.String("msg", msg),
	)
	writeJSON(logger, w, r, status, ErrorResponse{Error: msg})
}

// writeAppErr maps domain sentinels to HTTP statuses. Unknown errors are
// logged and reported as 500 without leaking details.
func writeAppErr(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(logger, w, r, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(logger, w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, apperr.ErrOrderLocked):
		writeError(logger, w, r, http.StatusConflict, "order already picked up")
	case errors.Is(err, apperr.ErrNoCourierAvailable):
		writeError(logger, w, r, http.StatusConflict, "no courier available")
	case errors.Is(err, apperr.ErrConflict):
		writeError(logger, w, r, http.StatusConflict, "concurrent update, retry")
	case errors.Is(err, apperr.ErrExpired):
		writeError(logger, w, r, http.StatusBadRequest, "assignment window expired")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(logger, w, r, http.StatusBadRequest, "invalid state for this operation")
	case errors.Is(err, apperr.ErrInvalidDeliveryStatus):
		writeError(logger, w, r, http.StatusBadRequest, "invalid delivery status")
	case errors.Is(err, apperr.ErrNoCodeIssued):
		writeError(logger, w, r, http.StatusBadRequest, "no delivery code issued")
	case errors.Is(err, apperr.ErrCodeExpired):
		writeError(logger, w, r, http.StatusBadRequest, "delivery code expired")
	case errors.Is(err, apperr.ErrInvalidCode):
		writeError(logger, w, r, http.StatusBadRequest, "invalid delivery code")
	case errors.Is(err, apperr.ErrInvalid):
		writeError(logger, w, r, http.StatusBadRequest, "invalid input")
	default:
		logger.Error("internal error",
			logx.String("req_id", reqID(r.Context())),
			logx.Err(err),
		)
		writeError(logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

const (
	bodyLimit = 1 << 20
)

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid input")
		return false
	}
	return true
}
