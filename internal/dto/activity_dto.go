package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

// AdminActivityListRequest defines filters for retrieving activity logs.
type AdminActivityListRequest struct {
	Page        int
	PageSize    int
	PerformedBy uint
	Category    string `validate:"omitempty,oneof=user_management venue_management batch_management partner_management program_management amenity_management member_management batch_session_management profile_management fixed_asset_management attendance_management system"`
	Action      string
	EntityType  string
	EntityID    uint
	From        string `validate:"omitempty,datetime=2006-01-02"`
	Until       string `validate:"omitempty,datetime=2006-01-02"`
}

// AdminActivityResponse serializes activity log entries.
type AdminActivityResponse struct {
	ID          uint                    `json:"id"`
	Action      string                  `json:"action"`
	Actor       string                  `json:"actor"`
	TargetLabel string                  `json:"target_label"`
	Category    models.ActivityCategory `json:"category"`
	Details     string                  `json:"details"`
	IPAddress   *string                 `json:"ip_address"`
	OldValues   map[string]interface{}  `json:"old_values"`
	NewValues   map[string]interface{}  `json:"new_values"`
	PerformedBy *uint                   `json:"performed_by"`
	EntityType  *string                 `json:"entity_type"`
	EntityID    *uint                   `json:"entity_id"`
	CreatedAt   time.Time               `json:"created_at"`
}

// AdminActivityListResponse wraps paginated activity logs.
type AdminActivityListResponse struct {
	Items      []AdminActivityResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}

// ActivityFeedRequest captures recent feed filters.
type ActivityFeedRequest struct {
	Category string `validate:"omitempty,oneof=user_management venue_management batch_management partner_management program_management amenity_management member_management batch_session_management profile_management fixed_asset_management attendance_management system"`
	Page     int
	PageSize int
}

// ActivityFeedResponse wraps the recent activity feed.
type ActivityFeedResponse struct {
	Items      []AdminActivityResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
	CacheHit   bool                    `json:"cache_hit"`
}

// ActivityCategoryCount is the number of entries in one category.
type ActivityCategoryCount struct {
	Category models.ActivityCategory `json:"category"`
	Total    int64                   `json:"total"`
}

// ActivitySummaryResponse aggregates entry counts per category.
type ActivitySummaryResponse struct {
	Categories  []ActivityCategoryCount `json:"categories"`
	Total       int64                   `json:"total"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// NewAdminActivityResponse converts a model into an activity DTO.
func NewAdminActivityResponse(entry models.ActivityLog) AdminActivityResponse {
	return AdminActivityResponse{
		ID:          entry.ID,
		Action:      entry.Action,
		Actor:       entry.Actor,
		TargetLabel: entry.TargetLabel,
		Category:    entry.Category,
		Details:     entry.Details,
		IPAddress:   entry.IPAddress,
		OldValues:   valuesFromJSON(entry.OldValues),
		NewValues:   valuesFromJSON(entry.NewValues),
		PerformedBy: entry.PerformedBy,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		CreatedAt:   entry.CreatedAt,
	}
}

func valuesFromJSON(data datatypes.JSONMap) map[string]interface{} {
	if len(data) == 0 {
		return nil
	}
	return map[string]interface{}(data)
}
