package dto

import (
	"time"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

// AmenityListRequest defines filters for listing amenities.
type AmenityListRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   string `validate:"omitempty,oneof=available unavailable maintenance"`
}

// AmenityCreateRequest captures the payload to register an amenity.
type AmenityCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Status      string `json:"status" validate:"omitempty,oneof=available unavailable maintenance"`
	VenueID     *uint  `json:"venue_id"`
}

// AmenityBulkUpdateItem patches one amenity inside a bulk update.
type AmenityBulkUpdateItem struct {
	ID          uint    `json:"id" validate:"required"`
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      *string `json:"status" validate:"omitempty,oneof=available unavailable maintenance"`
}

// AmenityBulkUpdateRequest patches several amenities all-or-nothing.
type AmenityBulkUpdateRequest struct {
	Items []AmenityBulkUpdateItem `json:"items" validate:"required,min=1,max=200,dive"`
}

// AmenityResponse serializes an amenity.
type AmenityResponse struct {
	ID          uint      `json:"id"`
	VenueID     *uint     `json:"venue_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AmenityListResponse wraps a paginated amenity listing.
type AmenityListResponse struct {
	Items      []AmenityResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewAmenityResponse converts a model into a DTO.
func NewAmenityResponse(amenity models.Amenity) AmenityResponse {
	return AmenityResponse{
		ID:          amenity.ID,
		VenueID:     amenity.VenueID,
		Name:        amenity.Name,
		Description: amenity.Description,
		Status:      amenity.Status,
		CreatedAt:   amenity.CreatedAt,
		UpdatedAt:   amenity.UpdatedAt,
	}
}
