package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a concurrent-update conflict: an optimistic
// write observed a stale order version.
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested order or courier does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden indicates the caller is not the authorized actor for the action.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition indicates a requested assignment state change
// that is not on the allow-list for the current state.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrInvalidDeliveryStatus indicates a courier-requested delivery status
// that is not a legal next step.
var ErrInvalidDeliveryStatus = errors.New("invalid delivery status")

// ErrExpired indicates the acceptance deadline has passed.
var ErrExpired = errors.New("assignment expired")

// ErrInvalidCode indicates a hand-off code mismatch.
var ErrInvalidCode = errors.New("invalid delivery code")

// ErrCodeExpired indicates the hand-off code is past its expiry.
var ErrCodeExpired = errors.New("delivery code expired")

// ErrNoCodeIssued indicates hand-off verification without a generated code.
var ErrNoCodeIssued = errors.New("no delivery code issued")

// ErrOrderLocked indicates a shop-status reversal after the courier
// already picked up the goods.
var ErrOrderLocked = errors.New("order locked")

// ErrNoCourierAvailable indicates an empty candidate pool or an order
// that hit the assignment attempt cap.
var ErrNoCourierAvailable = errors.New("no courier available")
