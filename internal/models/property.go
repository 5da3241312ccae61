package models

import "gorm.io/datatypes"

// Property statuses.
const (
	PropertyStatusActive      = "active"
	PropertyStatusInactive    = "inactive"
	PropertyStatusMaintenance = "maintenance"
)

// Property represents a managed unit. OwnerID references the user whose
// records the unit belongs to; ownership checks compare against it.
type Property struct {
	BaseModel

	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Name     string `gorm:"not null" json:"name"`
	Address  string `gorm:"type:text" json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Bedrooms int    `json:"bedrooms"`
	MaxGuests int   `json:"max_guests"`

	Status    string         `gorm:"type:varchar(32);default:'active';index" json:"status"`
	Amenities datatypes.JSON `json:"amenities"`
	Notes     string         `gorm:"type:text" json:"notes"`
}
