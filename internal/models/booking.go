package models

import "time"

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Booking represents a reservation against a property. UserID is the
// booking owner for ownership-gated access.
type Booking struct {
	BaseModel

	PropertyID string    `gorm:"type:uuid;not null;index" json:"property_id"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CheckIn  time.Time `gorm:"not null;index" json:"check_in"`
	CheckOut time.Time `gorm:"not null" json:"check_out"`
	Guests   int       `gorm:"default:1" json:"guests"`

	Status string `gorm:"type:varchar(32);default:'pending';index" json:"status"`
	Notes  string `gorm:"type:text" json:"notes"`
}
