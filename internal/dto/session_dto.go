package dto

import (
	"time"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

// BatchSessionCreateRequest schedules a new session for a batch.
type BatchSessionCreateRequest struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string  `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   string  `json:"end_time" validate:"omitempty,datetime=15:04"`
	Notes     *string `json:"notes" validate:"omitempty,max=2000"`
}

// BatchSessionRescheduleRequest moves a session in place.
type BatchSessionRescheduleRequest struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string  `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   string  `json:"end_time" validate:"omitempty,datetime=15:04"`
	Notes     *string `json:"notes" validate:"omitempty,max=2000"`
}

// BatchSessionStatusRequest changes the lifecycle status of a session.
type BatchSessionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed cancelled"`
}

// BatchSessionResponse serializes a batch session.
type BatchSessionResponse struct {
	ID        uint      `json:"id"`
	BatchID   uint      `json:"batch_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Status    string    `json:"status"`
	Notes     *string   `json:"notes"`
	Editable  bool      `json:"editable"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBatchSessionResponse converts a model into a DTO evaluated against today.
func NewBatchSessionResponse(session models.BatchSession, today time.Time) BatchSessionResponse {
	return BatchSessionResponse{
		ID:        session.ID,
		BatchID:   session.BatchID,
		Date:      models.FormatDate(session.Day()),
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
		Status:    session.Status,
		Notes:     session.Notes,
		Editable:  !session.Day().After(models.DateOf(today)),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}
