package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PersonType distinguishes the two kinds of people tracked on a batch roster.
type PersonType string

const (
	PersonTypeMember  PersonType = "member"
	PersonTypePartner PersonType = "partner"
)

// Valid returns true when the person type is supported.
func (t PersonType) Valid() bool {
	return t == PersonTypeMember || t == PersonTypePartner
}

// Lifecycle statuses shared by members and partners.
const (
	PersonStatusActive      = "active"
	PersonStatusInactive    = "inactive"
	PersonStatusBlacklisted = "blacklisted"
	// PersonStatusPaused is never stored; it is the display status while an excuse window is open.
	PersonStatusPaused = "paused"
)

// Excuse holds the pause window of a member or partner. Both fields are set
// and cleared together.
type Excuse struct {
	ExcusedUntil *datatypes.Date `gorm:"type:date" json:"excused_until"`
	ExcuseReason *string         `gorm:"type:text" json:"excuse_reason"`
}

// ExcusedUntilDate returns the end of the excuse window as a calendar date.
func (e Excuse) ExcusedUntilDate() (time.Time, bool) {
	if e.ExcusedUntil == nil {
		return time.Time{}, false
	}
	return DateOf(time.Time(*e.ExcusedUntil)), true
}

// PausedOn reports whether the excuse window covers the given day.
func (e Excuse) PausedOn(today time.Time) bool {
	until, ok := e.ExcusedUntilDate()
	if !ok {
		return false
	}
	return !until.Before(DateOf(today))
}

// EffectiveStatus returns "paused" while the excuse window is open, otherwise status.
func (e Excuse) EffectiveStatus(status string, today time.Time) string {
	if e.PausedOn(today) {
		return PersonStatusPaused
	}
	return status
}

// Member is an enrolled student.
type Member struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;index" json:"email"`
	Phone        string `gorm:"size:32" json:"phone"`
	GuardianName string `gorm:"size:255" json:"guardian_name"`
	Status       string `gorm:"size:32;not null;default:'active';index" json:"status"`
	Excuse
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// RecordID returns the primary key.
func (m Member) RecordID() uint { return m.ID }

// AuditLabel names the member in activity log details.
func (m Member) AuditLabel() string { return m.Name }

// AuditValues returns the fields tracked by the activity log.
func (m Member) AuditValues() map[string]interface{} {
	return map[string]interface{}{
		"name":          m.Name,
		"email":         m.Email,
		"phone":         m.Phone,
		"guardian_name": m.GuardianName,
		"status":        m.Status,
		"excused_until": FormatDatePtr(m.ExcusedUntil),
		"excuse_reason": stringValue(m.ExcuseReason),
		"updated_at":    m.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Partner is an instructor assigned to batches.
type Partner struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"size:255;not null" json:"name"`
	Email          string `gorm:"size:255;index" json:"email"`
	Phone          string `gorm:"size:32" json:"phone"`
	Specialization string `gorm:"size:255" json:"specialization"`
	Status         string `gorm:"size:32;not null;default:'active';index" json:"status"`
	Excuse
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (p Partner) RecordID() uint { return p.ID }

func (p Partner) AuditLabel() string { return p.Name }

// AuditValues returns the fields tracked by the activity log.
func (p Partner) AuditValues() map[string]interface{} {
	return map[string]interface{}{
		"name":           p.Name,
		"email":          p.Email,
		"phone":          p.Phone,
		"specialization": p.Specialization,
		"status":         p.Status,
		"excused_until":  FormatDatePtr(p.ExcusedUntil),
		"excuse_reason":  stringValue(p.ExcuseReason),
		"updated_at":     p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// PersonSummary is the roster view of a member or partner.
type PersonSummary struct {
	ID     uint
	Type   PersonType
	Name   string
	Status string
	Excuse
}

func stringValue(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
