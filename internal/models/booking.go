package models

// Booking maps the columns this service is allowed to touch on the
// externally owned bookings table. The booking subsystem owns the schema;
// this row is deliberately excluded from AutoMigrate.
type Booking struct {
	ID            string `gorm:"primaryKey;size:64"`
	Status        string `gorm:"size:20"`
	PaymentStatus string `gorm:"size:20"`
}

func (Booking) TableName() string {
	return "bookings"
}
