package service

import "errors"

// Validation and precondition failures are detected before any external
// call, so callers can retry them safely with corrected input.
var (
	ErrInvalidAmount     = errors.New("amount must be at least 1")
	ErrMissingFields     = errors.New("gateway_order_id, gateway_payment_id and gateway_signature are required")
	ErrInvalidSignature  = errors.New("payment signature verification failed")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrNotRefundable     = errors.New("payment is not in a refundable state")
	ErrAlreadyRefunded   = errors.New("payment is already fully refunded")
	ErrMissingGatewayRef = errors.New("payment has no gateway payment reference")
	ErrConfiguration     = errors.New("gateway credentials are not configured")
)

// ErrOrderConflict is returned when a verify lands on an order that was
// already confirmed with a different gateway payment id.
var ErrOrderConflict = errors.New("order already confirmed with a different payment")
