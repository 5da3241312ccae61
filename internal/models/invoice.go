package models

import "time"

// Invoice statuses.
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// Invoice bills a user for a booking or service. Amounts are stored in
// minor currency units to keep the arithmetic exact.
type Invoice struct {
	BaseModel

	Number string `gorm:"uniqueIndex;not null" json:"number"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	PropertyID *string  `gorm:"type:uuid;index" json:"property_id"`
	BookingID  *string  `gorm:"type:uuid;index" json:"booking_id"`
	Booking    *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`

	AmountCents int64  `gorm:"not null" json:"amount_cents"`
	Currency    string `gorm:"type:varchar(3);default:'USD'" json:"currency"`

	Status  string     `gorm:"type:varchar(32);default:'draft';index" json:"status"`
	DueDate *time.Time `json:"due_date"`
	PaidAt  *time.Time `json:"paid_at"`
	Notes   string     `gorm:"type:text" json:"notes"`
}
