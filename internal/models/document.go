package models

import "gorm.io/datatypes"

// Document stores metadata for an uploaded file. The file body lives in
// object storage; only the reference is kept here. OwnerID drives ownership
// checks for non-admin access.
type Document struct {
	BaseModel

	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	PropertyID *string `gorm:"type:uuid;index" json:"property_id"`

	FileName    string `gorm:"not null" json:"file_name"`
	ContentType string `gorm:"type:varchar(128)" json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StoragePath string `gorm:"not null" json:"-"`

	Metadata datatypes.JSON `json:"metadata"`
}
