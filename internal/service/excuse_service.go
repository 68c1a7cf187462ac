package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

// Excuse toggle actions.
const (
	ExcuseActionPause  = "pause"
	ExcuseActionResume = "resume"
)

var excuseAuditKeys = []string{"excused_until", "excuse_reason"}

// ExcuseService pauses and resumes members and partners.
type ExcuseService interface {
	Toggle(ctx context.Context, req dto.ExcuseToggleRequest, actor *ActivityActor) (dto.PersonResponse, error)
}

type excuseService struct {
	tx        repository.Transactor
	people    repository.PersonRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	clock     clock.Clock
	logger    zerolog.Logger
}

// NewExcuseService constructs the pause/resume service.
func NewExcuseService(tx repository.Transactor, people repository.PersonRepository, activity ActivityRecorder, validator *validator.Validate, clk clock.Clock, logger zerolog.Logger) ExcuseService {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &excuseService{
		tx:        tx,
		people:    people,
		activity:  activity,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		clock:     clk,
		logger:    logger.With().Str("component", "excuse_service").Logger(),
	}
}

func (s *excuseService) Toggle(ctx context.Context, req dto.ExcuseToggleRequest, actor *ActivityActor) (dto.PersonResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PersonResponse{}, err
	}

	today := clock.Today(s.clock)
	personType := models.PersonType(req.PersonType)

	var (
		pause   bool
		endDate time.Time
		reason  string
	)
	if req.Action == ExcuseActionPause {
		pause = true
		reason = plainText(s.sanitizer, req.Reason)
		fields := make([]FieldError, 0, 2)
		if reason == "" {
			fields = append(fields, FieldError{Field: "reason", Message: "is required to pause"})
		}
		var err error
		endDate, err = models.ParseDate(req.EndDate)
		switch {
		case strings.TrimSpace(req.EndDate) == "":
			fields = append(fields, FieldError{Field: "end_date", Message: "is required to pause"})
		case err != nil:
			fields = append(fields, FieldError{Field: "end_date", Message: "must match format 2006-01-02"})
		case endDate.Before(today):
			fields = append(fields, FieldError{Field: "end_date", Message: "must not be before " + models.FormatDate(today)})
		}
		if len(fields) > 0 {
			return dto.PersonResponse{}, &ValidationError{Fields: fields}
		}
	}

	var response dto.PersonResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		before, err := s.people.Find(ctx, personType, req.PersonID)
		if err != nil {
			return s.lookupError(personType, req.PersonID, err)
		}

		if pause {
			err = s.people.SetExcuse(ctx, personType, req.PersonID, &endDate, &reason)
		} else {
			err = s.people.SetExcuse(ctx, personType, req.PersonID, nil, nil)
		}
		if err != nil {
			s.logger.Error().Err(err).Str("person_type", req.PersonType).Uint("person_id", req.PersonID).Str("action", req.Action).Msg("failed to update excuse")
			return storageError(string(personType), err)
		}

		after, err := s.people.Find(ctx, personType, req.PersonID)
		if err != nil {
			return storageError(string(personType), err)
		}

		details := fmt.Sprintf("Resumed %s", after.Name)
		action := "Person Resumed"
		if pause {
			details = fmt.Sprintf("Paused %s until %s. Reason: %s", after.Name, models.FormatDate(endDate), reason)
			action = "Person Paused"
		}

		entityID := after.ID
		if err := s.activity.Record(ctx, ActivityEntry{
			Action:      action,
			Category:    models.CategoryAttendanceManagement,
			TargetLabel: after.Name,
			Details:     details,
			OldValues:   PickValues(excuseValues(before.Excuse), excuseAuditKeys...),
			NewValues:   PickValues(excuseValues(after.Excuse), excuseAuditKeys...),
			EntityType:  string(personType),
			EntityID:    &entityID,
			Actor:       actor,
		}); err != nil {
			return err
		}

		response = dto.NewPersonSummaryResponse(after, today)
		return nil
	})
	if err != nil {
		return dto.PersonResponse{}, err
	}
	return response, nil
}

func (s *excuseService) lookupError(personType models.PersonType, id uint, err error) error {
	if errors.Is(err, repository.ErrUnknownPersonType) {
		return newValidationError("person_type", "must be member or partner")
	}
	return storageError(fmt.Sprintf("%s %d", personType, id), err)
}

func excuseValues(excuse models.Excuse) map[string]interface{} {
	values := map[string]interface{}{
		"excused_until": models.FormatDatePtr(excuse.ExcusedUntil),
		"excuse_reason": nil,
	}
	if excuse.ExcuseReason != nil {
		values["excuse_reason"] = *excuse.ExcuseReason
	}
	return values
}
