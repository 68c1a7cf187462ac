package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

// BatchSessionService manages the schedule of a batch.
type BatchSessionService interface {
	List(ctx context.Context, batchID uint) ([]dto.BatchSessionResponse, error)
	Create(ctx context.Context, batchID uint, req dto.BatchSessionCreateRequest, actor *ActivityActor) (dto.BatchSessionResponse, error)
	Reschedule(ctx context.Context, batchID, sessionID uint, req dto.BatchSessionRescheduleRequest, actor *ActivityActor) (dto.BatchSessionResponse, error)
	UpdateStatus(ctx context.Context, batchID, sessionID uint, req dto.BatchSessionStatusRequest, actor *ActivityActor) (dto.BatchSessionResponse, error)
}

type batchSessionService struct {
	tx        repository.Transactor
	batches   repository.BatchRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	clock     clock.Clock
	logger    zerolog.Logger
}

// NewBatchSessionService constructs the batch session service.
func NewBatchSessionService(tx repository.Transactor, batches repository.BatchRepository, activity ActivityRecorder, validator *validator.Validate, clk clock.Clock, logger zerolog.Logger) BatchSessionService {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &batchSessionService{
		tx:        tx,
		batches:   batches,
		activity:  activity,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		clock:     clk,
		logger:    logger.With().Str("component", "batch_session_service").Logger(),
	}
}

func (s *batchSessionService) List(ctx context.Context, batchID uint) ([]dto.BatchSessionResponse, error) {
	if _, err := s.batches.GetByID(ctx, batchID); err != nil {
		return nil, storageError(fmt.Sprintf("batch %d", batchID), err)
	}
	sessions, err := s.batches.ListSessions(ctx, batchID)
	if err != nil {
		return nil, storageError("batch sessions", err)
	}

	today := clock.Today(s.clock)
	responses := make([]dto.BatchSessionResponse, 0, len(sessions))
	for _, session := range sessionsInRange(sessions, nil, nil) {
		responses = append(responses, dto.NewBatchSessionResponse(session, today))
	}
	return responses, nil
}

func (s *batchSessionService) Create(ctx context.Context, batchID uint, req dto.BatchSessionCreateRequest, actor *ActivityActor) (dto.BatchSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BatchSessionResponse{}, err
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return dto.BatchSessionResponse{}, newValidationError("date", "must match format 2006-01-02")
	}
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return dto.BatchSessionResponse{}, err
	}

	session := models.BatchSession{
		BatchID:   batchID,
		Date:      models.NewDate(date),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.SessionStatusScheduled,
		Notes:     s.cleanText(req.Notes),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		batch, err := s.batches.GetByID(ctx, batchID)
		if err != nil {
			return storageError(fmt.Sprintf("batch %d", batchID), err)
		}
		if err := s.batches.CreateSession(ctx, &session); err != nil {
			return storageError("batch session", err)
		}
		id := session.ID
		return s.activity.Record(ctx, ActivityEntry{
			Action:      "Batch Session Created",
			Category:    models.CategoryBatchSessionManagement,
			TargetLabel: batch.Name,
			Details:     fmt.Sprintf("Scheduled a session of %s on %s", batch.Name, models.FormatDate(date)),
			NewValues:   session.AuditValues(),
			EntityType:  "batch_session",
			EntityID:    &id,
			Actor:       actor,
		})
	})
	if err != nil {
		return dto.BatchSessionResponse{}, err
	}
	return dto.NewBatchSessionResponse(session, clock.Today(s.clock)), nil
}

func (s *batchSessionService) Reschedule(ctx context.Context, batchID, sessionID uint, req dto.BatchSessionRescheduleRequest, actor *ActivityActor) (dto.BatchSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BatchSessionResponse{}, err
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return dto.BatchSessionResponse{}, newValidationError("date", "must match format 2006-01-02")
	}
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return dto.BatchSessionResponse{}, err
	}

	updates := map[string]interface{}{
		"date":   models.NewDate(date),
		"status": models.SessionStatusRescheduled,
	}
	if req.StartTime != "" {
		updates["start_time"] = req.StartTime
	}
	if req.EndTime != "" {
		updates["end_time"] = req.EndTime
	}
	if req.Notes != nil {
		updates["notes"] = s.cleanText(req.Notes)
	}

	return s.update(ctx, batchID, sessionID, updates, "Batch Session Rescheduled", actor)
}

func (s *batchSessionService) UpdateStatus(ctx context.Context, batchID, sessionID uint, req dto.BatchSessionStatusRequest, actor *ActivityActor) (dto.BatchSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BatchSessionResponse{}, err
	}
	updates := map[string]interface{}{"status": req.Status}
	return s.update(ctx, batchID, sessionID, updates, "Batch Session Updated", actor)
}

func (s *batchSessionService) update(ctx context.Context, batchID, sessionID uint, updates map[string]interface{}, action string, actor *ActivityActor) (dto.BatchSessionResponse, error) {
	var updated models.BatchSession
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		batch, err := s.batches.GetByID(ctx, batchID)
		if err != nil {
			return storageError(fmt.Sprintf("batch %d", batchID), err)
		}
		before, err := s.batches.GetSession(ctx, batchID, sessionID)
		if err != nil {
			return storageError(fmt.Sprintf("session %d of batch %d", sessionID, batchID), err)
		}

		updated, err = s.batches.UpdateSession(ctx, batchID, sessionID, updates)
		if err != nil {
			s.logger.Error().Err(err).Uint("batch_id", batchID).Uint("session_id", sessionID).Msg("failed to update batch session")
			return storageError("batch session", err)
		}

		oldValues, newValues := DiffValues(before.AuditValues(), updated.AuditValues())
		if len(newValues) == 0 {
			return nil
		}
		return s.activity.Record(ctx, ActivityEntry{
			Action:      action,
			Category:    models.CategoryBatchSessionManagement,
			TargetLabel: batch.Name,
			Details:     DescribeChanges(fmt.Sprintf("session of %s", batch.Name), oldValues, newValues),
			OldValues:   oldValues,
			NewValues:   newValues,
			EntityType:  "batch_session",
			EntityID:    &sessionID,
			Actor:       actor,
		})
	})
	if err != nil {
		return dto.BatchSessionResponse{}, err
	}
	return dto.NewBatchSessionResponse(updated, clock.Today(s.clock)), nil
}

func (s *batchSessionService) cleanText(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := plainText(s.sanitizer, *value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// validateTimeRange rejects sessions that end before they start. Both values are HH:MM.
func validateTimeRange(start, end string) error {
	if start == "" || end == "" {
		return nil
	}
	if end <= start {
		return newValidationError("end_time", "must be after start_time")
	}
	return nil
}
