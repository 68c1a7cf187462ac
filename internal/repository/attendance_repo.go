package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

// AttendanceRepository persists attendance rows keyed by (person, session).
type AttendanceRepository interface {
	ListForSessions(ctx context.Context, personType models.PersonType, sessionIDs []uint) ([]models.Attendance, error)
	Find(ctx context.Context, personType models.PersonType, personID, sessionID uint) (models.Attendance, error)
	Upsert(ctx context.Context, record *models.Attendance) (models.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs the attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) ListForSessions(ctx context.Context, personType models.PersonType, sessionIDs []uint) ([]models.Attendance, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	var records []models.Attendance
	err := conn(ctx, r.db).
		Where("person_type = ?", personType).
		Where("batch_session_id IN ?", sessionIDs).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) Find(ctx context.Context, personType models.PersonType, personID, sessionID uint) (models.Attendance, error) {
	var record models.Attendance
	err := conn(ctx, r.db).
		Where("person_type = ? AND person_id = ? AND batch_session_id = ?", personType, personID, sessionID).
		First(&record).Error
	if err != nil {
		return models.Attendance{}, err
	}
	return record, nil
}

func (r *attendanceRepository) Upsert(ctx context.Context, record *models.Attendance) (models.Attendance, error) {
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "person_type"}, {Name: "person_id"}, {Name: "batch_session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "notes", "marked_at", "marked_by", "marked_by_name", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return models.Attendance{}, err
	}
	return r.Find(ctx, record.PersonType, record.PersonID, record.BatchSessionID)
}
