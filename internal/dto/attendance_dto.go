package dto

import (
	"time"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

// AttendanceSource tells persisted rows apart from entries synthesised for display.
type AttendanceSource string

const (
	AttendanceSourcePersisted AttendanceSource = "persisted"
	AttendanceSourceSynthetic AttendanceSource = "synthetic"
)

// AttendanceSnapshotRequest selects the batch roster and date range to reconstruct.
type AttendanceSnapshotRequest struct {
	BatchID    uint   `validate:"required"`
	PersonType string `validate:"required,oneof=member partner"`
	// AsOf pins the current date for in-process callers; the HTTP surface never sets it.
	AsOf       string `validate:"omitempty,datetime=2006-01-02"`
	From       string `validate:"omitempty,datetime=2006-01-02"`
	To         string `validate:"omitempty,datetime=2006-01-02"`
}

// AttendanceEntry is one person's attendance on one session date.
type AttendanceEntry struct {
	ID              *uint            `json:"id"`
	Source          AttendanceSource `json:"source"`
	PersonType      string           `json:"person_type"`
	PersonID        uint             `json:"person_id"`
	PersonName      string           `json:"person_name"`
	PersonStatus    string           `json:"person_status"`
	BatchSessionID  uint             `json:"batch_session_id"`
	Date            string           `json:"date"`
	Status          string           `json:"status"`
	ExcuseApplied   bool             `json:"excuse_applied"`
	Notes           *string          `json:"notes"`
	MarkedAt        *time.Time       `json:"marked_at"`
	MarkedBy        *uint            `json:"marked_by"`
	MarkedByName    *string          `json:"marked_by_name"`
	ExcusedUntil    *string          `json:"excused_until"`
	ExcuseReason    *string          `json:"excuse_reason"`
	EffectivePaused bool             `json:"effectively_paused"`
}

// Synthetic reports whether the entry has no backing row.
func (e AttendanceEntry) Synthetic() bool {
	return e.Source == AttendanceSourceSynthetic
}

// AttendanceDay groups the entries of one session.
type AttendanceDay struct {
	Date           string            `json:"date"`
	BatchSessionID uint              `json:"batch_session_id"`
	SessionStatus  string            `json:"session_status"`
	StartTime      string            `json:"start_time"`
	EndTime        string            `json:"end_time"`
	Editable       bool              `json:"editable"`
	Records        []AttendanceEntry `json:"records"`
}

// AttendanceSnapshot is the dense date × person attendance matrix of a batch.
type AttendanceSnapshot struct {
	BatchID      uint            `json:"batch_id"`
	PersonType   string          `json:"person_type"`
	CurrentDate  string          `json:"current_date"`
	SessionDates []string        `json:"session_dates"`
	Days         []AttendanceDay `json:"days"`
}

// Records flattens the snapshot in day order.
func (s AttendanceSnapshot) Records() []AttendanceEntry {
	records := make([]AttendanceEntry, 0)
	for _, day := range s.Days {
		records = append(records, day.Records...)
	}
	return records
}

// Day returns the first day matching date.
func (s AttendanceSnapshot) Day(date string) (AttendanceDay, bool) {
	for _, day := range s.Days {
		if day.Date == date {
			return day, true
		}
	}
	return AttendanceDay{}, false
}

// MarkAttendanceRequest records one person's attendance on a batch date.
type MarkAttendanceRequest struct {
	PersonType string  `json:"person_type" validate:"required,oneof=member partner"`
	PersonID   uint    `json:"person_id" validate:"required"`
	BatchID    uint    `json:"batch_id" validate:"required"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	Status     string  `json:"status" validate:"required,oneof='present' 'absent' 'excused' 'not marked'"`
	Notes      *string `json:"notes" validate:"omitempty,max=2000"`
}

// BulkAttendanceItem is one person's status inside a bulk mark request.
type BulkAttendanceItem struct {
	PersonID uint    `json:"person_id" validate:"required"`
	Status   string  `json:"status" validate:"required,oneof='present' 'absent' 'excused' 'not marked'"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
}

// BulkMarkAttendanceRequest marks many people of a batch for one date atomically.
type BulkMarkAttendanceRequest struct {
	PersonType string               `json:"person_type" validate:"required,oneof=member partner"`
	BatchID    uint                 `json:"batch_id" validate:"required"`
	Date       string               `json:"date" validate:"required,datetime=2006-01-02"`
	Items      []BulkAttendanceItem `json:"items" validate:"required,min=1,dive"`
}

// AttendanceRecordResponse serializes a persisted attendance row.
type AttendanceRecordResponse struct {
	ID             uint       `json:"id"`
	PersonType     string     `json:"person_type"`
	PersonID       uint       `json:"person_id"`
	BatchSessionID uint       `json:"batch_session_id"`
	Date           string     `json:"date"`
	Status         string     `json:"status"`
	Notes          *string    `json:"notes"`
	MarkedAt       *time.Time `json:"marked_at"`
	MarkedBy       *uint      `json:"marked_by"`
	MarkedByName   *string    `json:"marked_by_name"`
}

// NewAttendanceRecordResponse converts a model into a DTO.
func NewAttendanceRecordResponse(record models.Attendance, date time.Time) AttendanceRecordResponse {
	return AttendanceRecordResponse{
		ID:             record.ID,
		PersonType:     string(record.PersonType),
		PersonID:       record.PersonID,
		BatchSessionID: record.BatchSessionID,
		Date:           models.FormatDate(date),
		Status:         record.Status,
		Notes:          record.Notes,
		MarkedAt:       record.MarkedAt,
		MarkedBy:       record.MarkedBy,
		MarkedByName:   record.MarkedByName,
	}
}
