package models

import "time"

// Expense records a cost booked against a property.
type Expense struct {
	BaseModel

	PropertyID string    `gorm:"type:uuid;not null;index" json:"property_id"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	AmountCents int64  `gorm:"not null" json:"amount_cents"`
	Currency    string `gorm:"type:varchar(3);default:'USD'" json:"currency"`

	Category    string    `gorm:"type:varchar(64);index" json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	IncurredAt  time.Time `gorm:"not null;index" json:"incurred_at"`
}
