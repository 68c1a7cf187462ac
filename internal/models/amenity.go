package models

import (
	"time"

	"gorm.io/gorm"
)

// Amenity statuses.
const (
	AmenityStatusAvailable   = "available"
	AmenityStatusUnavailable = "unavailable"
	AmenityStatusMaintenance = "maintenance"
)

// Amenity is a facility offered at a venue.
type Amenity struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	VenueID     *uint          `gorm:"index" json:"venue_id"`
	Name        string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:32;not null;default:'available'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// AuditValues returns the fields tracked by the activity log.
func (a Amenity) AuditValues() map[string]interface{} {
	return map[string]interface{}{
		"name":        a.Name,
		"description": a.Description,
		"status":      a.Status,
		"venue_id":    uintValue(a.VenueID),
	}
}
