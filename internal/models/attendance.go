package models

import "time"

// Attendance statuses.
const (
	AttendanceStatusPresent   = "present"
	AttendanceStatusAbsent    = "absent"
	AttendanceStatusNotMarked = "not marked"
	AttendanceStatusExcused   = "excused"
)

// ValidAttendanceStatus returns true when the status is a supported value.
func ValidAttendanceStatus(status string) bool {
	switch status {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusNotMarked, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Attendance is the persisted attendance of one person at one batch session.
type Attendance struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	PersonType     PersonType `gorm:"size:16;not null;uniqueIndex:idx_attendance_person_session" json:"person_type"`
	PersonID       uint       `gorm:"not null;uniqueIndex:idx_attendance_person_session" json:"person_id"`
	BatchSessionID uint       `gorm:"not null;uniqueIndex:idx_attendance_person_session;index" json:"batch_session_id"`
	Status         string     `gorm:"size:16;not null;default:'not marked'" json:"status"`
	Notes          *string    `gorm:"type:text" json:"notes"`
	MarkedAt       *time.Time `json:"marked_at"`
	MarkedBy       *uint      `json:"marked_by"`
	MarkedByName   *string    `gorm:"size:255" json:"marked_by_name"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Marked reports whether an administrator has recorded this row.
func (a Attendance) Marked() bool {
	return a.MarkedAt != nil
}

// AuditValues returns the fields tracked by the activity log.
func (a Attendance) AuditValues() map[string]interface{} {
	return map[string]interface{}{
		"status":    a.Status,
		"notes":     stringValue(a.Notes),
		"marked_by": uintValue(a.MarkedBy),
	}
}

func uintValue(value *uint) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
