package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Batch session statuses.
const (
	SessionStatusScheduled   = "scheduled"
	SessionStatusCompleted   = "completed"
	SessionStatusCancelled   = "cancelled"
	SessionStatusRescheduled = "rescheduled"
)

// Batch is a scheduled cohort of a program at a venue.
type Batch struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProgramID uint            `gorm:"index" json:"program_id"`
	VenueID   uint            `gorm:"index" json:"venue_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Capacity  int             `json:"capacity"`
	StartDate *datatypes.Date `gorm:"type:date" json:"start_date"`
	EndDate   *datatypes.Date `gorm:"type:date" json:"end_date"`
	Status    string          `gorm:"size:32;not null;default:'active'" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

// BatchSession is one scheduled meeting of a batch.
type BatchSession struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BatchID   uint           `gorm:"not null;index" json:"batch_id"`
	Date      datatypes.Date `gorm:"type:date;not null;index" json:"date"`
	StartTime string         `gorm:"size:8" json:"start_time"`
	EndTime   string         `gorm:"size:8" json:"end_time"`
	Status    string         `gorm:"size:32;not null;default:'scheduled'" json:"status"`
	Notes     *string        `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Day returns the session date as a calendar date.
func (s BatchSession) Day() time.Time {
	return DateOf(time.Time(s.Date))
}

// AuditValues returns the fields tracked by the activity log.
func (s BatchSession) AuditValues() map[string]interface{} {
	return map[string]interface{}{
		"date":       FormatDate(s.Day()),
		"start_time": s.StartTime,
		"end_time":   s.EndTime,
		"status":     s.Status,
		"notes":      stringValue(s.Notes),
	}
}

// BatchMember enrolls a member into a batch.
type BatchMember struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BatchID   uint           `gorm:"not null;uniqueIndex:idx_batch_member" json:"batch_id"`
	MemberID  uint           `gorm:"not null;uniqueIndex:idx_batch_member" json:"member_id"`
	Status    string         `gorm:"size:32;not null;default:'active'" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BatchPartner assigns a partner to a batch.
type BatchPartner struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BatchID   uint           `gorm:"not null;uniqueIndex:idx_batch_partner" json:"batch_id"`
	PartnerID uint           `gorm:"not null;uniqueIndex:idx_batch_partner" json:"partner_id"`
	Status    string         `gorm:"size:32;not null;default:'active'" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
