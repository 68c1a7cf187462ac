package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/observability"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

// ActivityActor represents the authenticated administrator performing an action.
type ActivityActor struct {
	ID        uint
	Name      string
	Role      string
	IPAddress string
}

// Authenticated reports whether the actor identifies a real administrator.
func (a *ActivityActor) Authenticated() bool {
	return a != nil && a.ID != 0
}

// DisplayName returns the actor name, "System" when nobody is authenticated.
func (a *ActivityActor) DisplayName() string {
	if !a.Authenticated() {
		return models.SystemActor
	}
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	return "Admin #" + uintString(a.ID)
}

// ActivityEntry captures the details required to persist an audit entry.
// Callers pass only the keys that changed in OldValues and NewValues.
type ActivityEntry struct {
	Action      string
	Category    models.ActivityCategory
	TargetLabel string
	Details     string
	OldValues   map[string]interface{}
	NewValues   map[string]interface{}
	EntityType  string
	EntityID    *uint
	Actor       *ActivityActor
}

// ActivityRecorder is the diff-logging contract every mutating operation calls.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivityService exposes methods to query and persist activity logs.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.AdminActivityListRequest) (dto.AdminActivityListResponse, error)
	Summary(ctx context.Context, since *time.Time) (dto.ActivitySummaryResponse, error)
}

type activityService struct {
	repo      repository.ActivityLogRepository
	publisher ActivityPublisher
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	clock     clock.Clock
	logger    zerolog.Logger
}

// NewActivityService constructs the activity log service. publisher may be nil.
func NewActivityService(repo repository.ActivityLogRepository, publisher ActivityPublisher, validator *validator.Validate, clk clock.Clock, logger zerolog.Logger) ActivityService {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &activityService{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		clock:     clk,
		logger:    logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) error {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return newValidationError("action", "is required")
	}
	if !entry.Category.Valid() {
		return newValidationError("category", "must be a known category")
	}

	model := models.ActivityLog{
		Action:      action,
		Actor:       entry.Actor.DisplayName(),
		TargetLabel: strings.TrimSpace(entry.TargetLabel),
		Category:    entry.Category,
		Details:     plainText(s.sanitizer, entry.Details),
		OldValues:   sanitizeValues(entry.OldValues),
		NewValues:   sanitizeValues(entry.NewValues),
		EntityID:    entry.EntityID,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if entityType := strings.TrimSpace(entry.EntityType); entityType != "" {
		model.EntityType = &entityType
	}
	if entry.Actor.Authenticated() {
		performedBy := entry.Actor.ID
		model.PerformedBy = &performedBy
		if ip := strings.TrimSpace(entry.Actor.IPAddress); ip != "" {
			model.IPAddress = &ip
		}
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", action).Str("category", string(entry.Category)).Msg("failed to persist activity log")
		return storageError("activity log", err)
	}

	repository.AfterCommit(ctx, func() {
		observability.AuditEntries().WithLabelValues(string(model.Category)).Inc()
		if s.publisher == nil {
			return
		}
		if err := s.publisher.PublishActivity(context.WithoutCancel(ctx), dto.NewAdminActivityResponse(model)); err != nil {
			s.logger.Warn().Err(err).Uint("activity_id", model.ID).Msg("failed to publish activity event")
		}
	})

	return nil
}

func (s *activityService) List(ctx context.Context, req dto.AdminActivityListRequest) (dto.AdminActivityListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AdminActivityListResponse{}, err
	}

	filter := repository.ActivityLogFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Category:   strings.TrimSpace(req.Category),
		Action:     strings.TrimSpace(req.Action),
		EntityType: strings.TrimSpace(req.EntityType),
	}
	if req.PerformedBy > 0 {
		filter.PerformedBy = &req.PerformedBy
	}
	if req.EntityID > 0 {
		filter.EntityID = &req.EntityID
	}
	if req.From != "" {
		from, _ := models.ParseDate(req.From)
		filter.From = &from
	}
	if req.Until != "" {
		until, _ := models.ParseDate(req.Until)
		endOfDay := until.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.Until = &endOfDay
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AdminActivityListResponse{}, storageError("activity logs", err)
	}

	items := make([]dto.AdminActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAdminActivityResponse(entry))
	}

	return dto.AdminActivityListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *activityService) Summary(ctx context.Context, since *time.Time) (dto.ActivitySummaryResponse, error) {
	counts, err := s.repo.CountByCategory(ctx, since)
	if err != nil {
		return dto.ActivitySummaryResponse{}, storageError("activity summary", err)
	}

	response := dto.ActivitySummaryResponse{
		Categories:  make([]dto.ActivityCategoryCount, 0, len(counts)),
		GeneratedAt: s.clock.Now().UTC(),
	}
	for _, count := range counts {
		response.Categories = append(response.Categories, dto.ActivityCategoryCount{Category: count.Category, Total: count.Total})
		response.Total += count.Total
	}
	return response, nil
}

// sanitizeValues masks secrets and stores empty diffs as NULL.
func sanitizeValues(values map[string]interface{}) datatypes.JSONMap {
	if len(values) == 0 {
		return nil
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range values {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
