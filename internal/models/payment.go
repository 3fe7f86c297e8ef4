package models

import (
	"time"
)

// Payment is the durable record of one gateway order and its lifecycle.
// It is never hard-deleted; refunded and failed rows are retained for audit.
type Payment struct {
	ID               string `gorm:"primaryKey;size:36" json:"id"`
	UserID           string `gorm:"size:64;not null;index" json:"user_id"`
	UserPhone        string `gorm:"size:20" json:"user_phone,omitempty"`
	GatewayOrderID   string `gorm:"size:64;uniqueIndex;not null" json:"gateway_order_id"`
	GatewayPaymentID string `gorm:"size:64" json:"gateway_payment_id,omitempty"`
	GatewaySignature string `gorm:"size:128" json:"-"`

	// Amount is in major units (rupees); conversion to paise happens only
	// at the gateway boundary.
	Amount   int64  `gorm:"not null" json:"amount"`
	Currency string `gorm:"size:3;default:'INR'" json:"currency"`
	Status   string `gorm:"size:20;not null;index" json:"status"`

	ServiceName     string `gorm:"size:120;not null" json:"service_name"`
	ServiceType     string `gorm:"size:60" json:"service_type,omitempty"`
	BookingID       string `gorm:"size:64;index" json:"booking_id,omitempty"`
	BookingDate     string `gorm:"size:20" json:"booking_date,omitempty"`
	BookingTimeSlot string `gorm:"size:40" json:"booking_time_slot,omitempty"`
	Address         string `gorm:"size:255" json:"address,omitempty"`
	City            string `gorm:"size:80" json:"city,omitempty"`
	Pincode         string `gorm:"size:10" json:"pincode,omitempty"`
	Notes           string `gorm:"type:text" json:"notes,omitempty"`

	RefundID     string     `gorm:"size:64" json:"refund_id,omitempty"`
	RefundAmount int64      `json:"refund_amount"` // cumulative, major units
	RefundStatus string     `gorm:"size:20" json:"refund_status,omitempty"`
	RefundReason string     `gorm:"size:255" json:"refund_reason,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`

	// IdempotencyKey dedupes create-order retries for the same logical
	// booking. Always set: derived key for booking-linked orders, the
	// receipt otherwise.
	IdempotencyKey string `gorm:"size:191;uniqueIndex" json:"-"`

	// SyncPending marks payments whose booking-sync follow-up has not
	// been confirmed; the reconciliation sweeper retries them.
	SyncPending bool `gorm:"index" json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// RefundHeadroom is the amount still refundable, in major units.
func (p *Payment) RefundHeadroom() int64 {
	return p.Amount - p.RefundAmount
}
