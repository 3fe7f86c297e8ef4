package service

import (
	"context"
	"fmt"

	"fixserv/internal/models"

	"gorm.io/gorm"
)

// BookingSync pushes payment outcomes to the externally owned booking
// records. Both updates are idempotent plain writes, so at-least-once
// retries from the reconciliation sweeper are safe.
type BookingSync interface {
	SetPaymentStatus(ctx context.Context, bookingID, status string) error
	SetBookingStatus(ctx context.Context, bookingID, status string) error
}

// GormBookingSync updates the bookings table directly. The table belongs
// to the booking subsystem; only the two status columns are ever written.
type GormBookingSync struct {
	db *gorm.DB
}

func NewGormBookingSync(db *gorm.DB) *GormBookingSync {
	return &GormBookingSync{db: db}
}

func (s *GormBookingSync) SetPaymentStatus(ctx context.Context, bookingID, status string) error {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	return nil
}

func (s *GormBookingSync) SetBookingStatus(ctx context.Context, bookingID, status string) error {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	return nil
}
