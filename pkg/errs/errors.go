package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer      = http.StatusInternalServerError
	ErrStatusClient              = http.StatusBadRequest
	ErrStatusNotLoggedIn         = http.StatusUnauthorized
	ErrStatusNotFound            = http.StatusNotFound
	ErrStatusConflict            = http.StatusConflict
	ErrStatusUnprocessable       = http.StatusUnprocessableEntity
	ErrStatusUpstreamUnavailable = http.StatusBadGateway
)

var (
	ErrInternalServer = errors.New("Internal server error")
	ErrClient         = errors.New("Bad request")
	ErrNotLoggedIn    = errors.New("Unauthorized access")
	ErrNotFound       = errors.New("Resource not found")
	ErrConflict       = errors.New("Conflicting record found")

	// ErrInvalidTransition: the requested state change is not in the
	// current state's allow-list. Rejected locally, never retried.
	ErrInvalidTransition = errors.New("Requested status transition is not allowed from the current status")

	// ErrPreconditionNotMet: the transition edge exists but its gate does
	// not hold (e.g. processing before payment on a non-COD order).
	ErrPreconditionNotMet = errors.New("Precondition for the requested operation is not met")

	ErrUpstreamUnavailable = errors.New("Upstream service is unavailable")
	ErrActiveRefundExists  = errors.New("An active refund already exists for this order")
	ErrEvidenceRequired    = errors.New("At least one evidence item is required")
	ErrPaymentExpired      = errors.New("Payment for this order has expired")
	ErrVoucherConsumed     = errors.New("Voucher has already been consumed")
)

var errorMap = map[error]int{
	ErrInternalServer:      ErrStatusInternalServer,
	ErrClient:              ErrStatusClient,
	ErrNotLoggedIn:         ErrStatusNotLoggedIn,
	ErrNotFound:            ErrStatusNotFound,
	ErrConflict:            ErrStatusConflict,
	ErrInvalidTransition:   ErrStatusConflict,
	ErrPreconditionNotMet:  ErrStatusUnprocessable,
	ErrUpstreamUnavailable: ErrStatusUpstreamUnavailable,
	ErrActiveRefundExists:  ErrStatusConflict,
	ErrEvidenceRequired:    ErrStatusClient,
	ErrPaymentExpired:      ErrStatusConflict,
	ErrVoucherConsumed:     ErrStatusConflict,
}

func GetErrorStatusCode(err error) int {
	errStatusCode, ok := errorMap[err]
	if !ok {
		errStatusCode = errorMap[ErrInternalServer]
	}
	return errStatusCode
}
