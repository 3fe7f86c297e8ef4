package domain

// Payment lifecycle statuses. Transitions are forward-only:
// created -> paid -> partially_refunded -> refunded. failed is terminal.
const (
	PaymentCreated           = "created"
	PaymentPending           = "pending"
	PaymentPaid              = "paid"
	PaymentFailed            = "failed"
	PaymentRefunded          = "refunded"
	PaymentPartiallyRefunded = "partially_refunded"
)

const (
	RefundPartial   = "partial"
	RefundProcessed = "processed"
)

// Booking status we push to the externally owned bookings table on refund.
const BookingCancelled = "cancelled"

const DefaultCurrency = "INR"

// ValidPaymentStatus reports whether s is a known payment status.
// Used to validate the history filter.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentCreated, PaymentPending, PaymentPaid, PaymentFailed,
		PaymentRefunded, PaymentPartiallyRefunded:
		return true
	}
	return false
}
