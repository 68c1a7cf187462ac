package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/observability"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

// AttendanceService marks attendance for batch sessions.
type AttendanceService interface {
	Mark(ctx context.Context, req dto.MarkAttendanceRequest, actor *ActivityActor) (dto.AttendanceRecordResponse, error)
	MarkBulk(ctx context.Context, req dto.BulkMarkAttendanceRequest, actor *ActivityActor) ([]dto.AttendanceRecordResponse, error)
}

type attendanceService struct {
	tx         repository.Transactor
	batches    repository.BatchRepository
	people     repository.PersonRepository
	attendance repository.AttendanceRepository
	activity   ActivityRecorder
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	clock      clock.Clock
	logger     zerolog.Logger
}

// NewAttendanceService constructs the mark-attendance service.
func NewAttendanceService(tx repository.Transactor, batches repository.BatchRepository, people repository.PersonRepository, attendance repository.AttendanceRepository, activity ActivityRecorder, validator *validator.Validate, clk clock.Clock, logger zerolog.Logger) AttendanceService {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &attendanceService{
		tx:         tx,
		batches:    batches,
		people:     people,
		attendance: attendance,
		activity:   activity,
		validator:  validator,
		sanitizer:  bluemonday.StrictPolicy(),
		clock:      clk,
		logger:     logger.With().Str("component", "attendance_service").Logger(),
	}
}

// markTarget is a batch session resolved from (batch, date) and checked for editability.
type markTarget struct {
	batch   models.Batch
	session models.BatchSession
}

func (s *attendanceService) Mark(ctx context.Context, req dto.MarkAttendanceRequest, actor *ActivityActor) (dto.AttendanceRecordResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AttendanceRecordResponse{}, err
	}

	var response dto.AttendanceRecordResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		target, err := s.resolveTarget(ctx, req.BatchID, req.Date)
		if err != nil {
			return err
		}
		response, err = s.markOne(ctx, target, models.PersonType(req.PersonType), req.PersonID, req.Status, req.Notes, actor)
		return err
	})
	if err != nil {
		return dto.AttendanceRecordResponse{}, err
	}
	return response, nil
}

func (s *attendanceService) MarkBulk(ctx context.Context, req dto.BulkMarkAttendanceRequest, actor *ActivityActor) ([]dto.AttendanceRecordResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{}, len(req.Items))
	for i, item := range req.Items {
		if _, dup := seen[item.PersonID]; dup {
			return nil, newValidationError(fmt.Sprintf("items[%d].person_id", i), "is listed more than once")
		}
		seen[item.PersonID] = struct{}{}
	}

	responses := make([]dto.AttendanceRecordResponse, 0, len(req.Items))
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		target, err := s.resolveTarget(ctx, req.BatchID, req.Date)
		if err != nil {
			return err
		}
		for _, item := range req.Items {
			response, err := s.markOne(ctx, target, models.PersonType(req.PersonType), item.PersonID, item.Status, item.Notes, actor)
			if err != nil {
				return err
			}
			responses = append(responses, response)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *attendanceService) resolveTarget(ctx context.Context, batchID uint, rawDate string) (markTarget, error) {
	date, err := models.ParseDate(rawDate)
	if err != nil {
		return markTarget{}, newValidationError("date", "must match format 2006-01-02")
	}

	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return markTarget{}, storageError("batch", err)
	}

	sessions, err := s.batches.ListSessions(ctx, batchID)
	if err != nil {
		return markTarget{}, storageError("batch sessions", err)
	}

	for _, session := range sessionsInRange(sessions, &date, &date) {
		if !editableOn(session.Day(), clock.Today(s.clock)) {
			return markTarget{}, fmt.Errorf("%w: session on %s is after %s", ErrEditability, models.FormatDate(date), models.FormatDate(clock.Today(s.clock)))
		}
		return markTarget{batch: batch, session: session}, nil
	}

	return markTarget{}, notFound(fmt.Sprintf("session of batch %d on %s", batchID, models.FormatDate(date)))
}

func (s *attendanceService) markOne(ctx context.Context, target markTarget, personType models.PersonType, personID uint, status string, notes *string, actor *ActivityActor) (dto.AttendanceRecordResponse, error) {
	if !models.ValidAttendanceStatus(status) {
		return dto.AttendanceRecordResponse{}, newValidationError("status", "must be one of present, absent, excused, not marked")
	}

	person, err := s.people.Find(ctx, personType, personID)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownPersonType) {
			return dto.AttendanceRecordResponse{}, newValidationError("person_type", "must be member or partner")
		}
		return dto.AttendanceRecordResponse{}, storageError(string(personType), err)
	}

	onRoster, err := s.batches.OnRoster(ctx, target.batch.ID, personType, personID)
	if err != nil {
		return dto.AttendanceRecordResponse{}, storageError("batch roster", err)
	}
	if !onRoster {
		return dto.AttendanceRecordResponse{}, notFound(fmt.Sprintf("%s %d in batch %d", personType, personID, target.batch.ID))
	}

	previous, err := s.attendance.Find(ctx, personType, personID, target.session.ID)
	hadPrevious := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AttendanceRecordResponse{}, storageError("attendance", err)
	}

	now := s.clock.Now().UTC()
	record := models.Attendance{
		PersonType:     personType,
		PersonID:       personID,
		BatchSessionID: target.session.ID,
		Status:         status,
		Notes:          s.cleanNotes(notes),
		MarkedAt:       &now,
	}
	if actor.Authenticated() {
		markedBy := actor.ID
		markedByName := actor.DisplayName()
		record.MarkedBy = &markedBy
		record.MarkedByName = &markedByName
	}

	saved, err := s.attendance.Upsert(ctx, &record)
	if err != nil {
		s.logger.Error().Err(err).Uint("batch_session_id", target.session.ID).Uint("person_id", personID).Msg("failed to upsert attendance")
		return dto.AttendanceRecordResponse{}, storageError("attendance", err)
	}

	var oldValues, newValues map[string]interface{}
	if hadPrevious {
		oldValues, newValues = DiffValues(previous.AuditValues(), saved.AuditValues())
	} else {
		newValues = saved.AuditValues()
	}
	newValues["date"] = models.FormatDate(target.session.Day())

	entityID := saved.ID
	err = s.activity.Record(ctx, ActivityEntry{
		Action:      "Attendance Marked",
		Category:    models.CategoryAttendanceManagement,
		TargetLabel: person.Name,
		Details: fmt.Sprintf("Marked %s %s as %s for %s on %s",
			personType, person.Name, status, target.batch.Name, models.FormatDate(target.session.Day())),
		OldValues:  oldValues,
		NewValues:  newValues,
		EntityType: "attendance",
		EntityID:   &entityID,
		Actor:      actor,
	})
	if err != nil {
		return dto.AttendanceRecordResponse{}, err
	}

	repository.AfterCommit(ctx, func() {
		observability.AttendanceMarks().WithLabelValues(string(personType), status).Inc()
	})

	return dto.NewAttendanceRecordResponse(saved, target.session.Day()), nil
}

func (s *attendanceService) cleanNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	cleaned := plainText(s.sanitizer, *notes)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
