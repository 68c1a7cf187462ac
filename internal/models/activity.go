package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityCategory groups audit entries by administrative subsystem.
type ActivityCategory string

const (
	CategoryUserManagement         ActivityCategory = "user_management"
	CategoryVenueManagement        ActivityCategory = "venue_management"
	CategoryBatchManagement        ActivityCategory = "batch_management"
	CategoryPartnerManagement      ActivityCategory = "partner_management"
	CategoryProgramManagement      ActivityCategory = "program_management"
	CategoryAmenityManagement      ActivityCategory = "amenity_management"
	CategoryMemberManagement       ActivityCategory = "member_management"
	CategoryBatchSessionManagement ActivityCategory = "batch_session_management"
	CategoryProfileManagement      ActivityCategory = "profile_management"
	CategoryFixedAssetManagement   ActivityCategory = "fixed_asset_management"
	CategoryAttendanceManagement   ActivityCategory = "attendance_management"
	CategorySystem                 ActivityCategory = "system"
)

// ActivityCategories lists every supported category tag.
var ActivityCategories = []ActivityCategory{
	CategoryUserManagement,
	CategoryVenueManagement,
	CategoryBatchManagement,
	CategoryPartnerManagement,
	CategoryProgramManagement,
	CategoryAmenityManagement,
	CategoryMemberManagement,
	CategoryBatchSessionManagement,
	CategoryProfileManagement,
	CategoryFixedAssetManagement,
	CategoryAttendanceManagement,
	CategorySystem,
}

// Valid reports whether the category is one of the fixed tags.
func (c ActivityCategory) Valid() bool {
	for _, candidate := range ActivityCategories {
		if c == candidate {
			return true
		}
	}
	return false
}

// SystemActor is the actor name used when no administrator is authenticated.
const SystemActor = "System"

// ActivityLog is an immutable audit entry describing one administrative action.
type ActivityLog struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Action      string            `gorm:"size:128;not null" json:"action"`
	Actor       string            `gorm:"size:255;not null" json:"actor"`
	TargetLabel string            `gorm:"size:255" json:"target_label"`
	Category    ActivityCategory  `gorm:"size:64;not null;index" json:"category"`
	Details     string            `gorm:"type:text" json:"details"`
	IPAddress   *string           `gorm:"size:64" json:"ip_address"`
	OldValues   datatypes.JSONMap `gorm:"type:json" json:"old_values"`
	NewValues   datatypes.JSONMap `gorm:"type:json" json:"new_values"`
	PerformedBy *uint             `gorm:"index" json:"performed_by"`
	EntityType  *string           `gorm:"size:64;index:idx_activity_entity" json:"entity_type"`
	EntityID    *uint             `gorm:"index:idx_activity_entity" json:"entity_id"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}
