package gateway

import (
	"context"
	"fmt"
)

// Order is a gateway-side order created before payment. Amount is in minor
// units (paise); conversion from rupees happens before calling the client.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Refund is a gateway-side refund against a captured payment.
type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// Client is the narrow surface the payment service needs from the provider.
type Client interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*Order, error)
	CreateRefund(ctx context.Context, paymentID string, amountPaise int64, notes map[string]string) (*Refund, error)
	Ping(ctx context.Context) error
	Mode() string
}

// Error wraps the provider's error envelope. Mutating calls that fail with
// an Error must not be blindly retried; the side effect may have landed.
type Error struct {
	Code        string
	Description string
	HTTPStatus  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s (%s, http %d)", e.Description, e.Code, e.HTTPStatus)
}
