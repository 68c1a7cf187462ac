package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date, keeping the wall-clock day of t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(parsed), nil
}

// FormatDate renders a calendar date.
func FormatDate(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

// NewDate wraps a calendar date for persistence.
func NewDate(t time.Time) datatypes.Date {
	return datatypes.Date(DateOf(t))
}

// FormatDatePtr renders a nullable date column; nil stays nil.
func FormatDatePtr(d *datatypes.Date) interface{} {
	if d == nil {
		return nil
	}
	return FormatDate(time.Time(*d))
}
