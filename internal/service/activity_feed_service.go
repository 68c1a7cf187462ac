package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/observability"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

// feedWindow is how far back the recent activity feed looks.
const feedWindow = 24 * time.Hour

// ActivityFeedService exposes the recent activity stream of the admin dashboard.
type ActivityFeedService interface {
	Recent(ctx context.Context, req dto.ActivityFeedRequest) (dto.ActivityFeedResponse, error)
}

type activityFeedService struct {
	repo      repository.ActivityLogRepository
	cache     *redis.Client
	ttl       time.Duration
	validator *validator.Validate
	clock     clock.Clock
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewActivityFeedService builds the activity feed service. cache may be nil.
func NewActivityFeedService(repo repository.ActivityLogRepository, cache *redis.Client, ttl time.Duration, validator *validator.Validate, clk clock.Clock, logger zerolog.Logger) ActivityFeedService {
	if ttl <= 0 {
		ttl = 45 * time.Second
	}
	if clk == nil {
		clk = clock.System(nil)
	}
	return &activityFeedService{
		repo:      repo,
		cache:     cache,
		ttl:       ttl,
		validator: validator,
		clock:     clk,
		tracer:    otel.Tracer("github.com/noah-isme/edutrack-admin-api/internal/service/activity_feed"),
		logger:    logger.With().Str("component", "activity_feed_service").Logger(),
	}
}

func (s *activityFeedService) Recent(ctx context.Context, req dto.ActivityFeedRequest) (dto.ActivityFeedResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityFeedResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "activity.feed", trace.WithAttributes(
		attribute.String("activity.category", req.Category),
	))
	defer span.End()

	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize)
	// The window is aligned to the cache TTL so concurrent readers share a key.
	now := s.clock.Now().UTC().Truncate(s.ttl)

	filter := repository.ActivityLogRecentFilter{
		Since:    now.Add(-feedWindow),
		Until:    now.Add(s.ttl),
		Category: strings.TrimSpace(req.Category),
		Page:     page,
		PageSize: pageSize,
	}

	cacheKey := s.cacheKey(filter)
	if cacheKey != "" {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.ActivityFeedResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("activity.cache_hit", true))
				observability.ActivityFeedRequests().WithLabelValues("hit").Inc()
				return response, nil
			}
		} else if err != nil && err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read activity feed cache")
		}
	}

	entries, total, err := s.repo.ListRecent(ctx, filter)
	if err != nil {
		span.RecordError(err)
		observability.ActivityFeedRequests().WithLabelValues("error").Inc()
		return dto.ActivityFeedResponse{}, storageError("activity feed", err)
	}

	items := make([]dto.AdminActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAdminActivityResponse(entry))
	}

	response := dto.ActivityFeedResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}

	if cacheKey != "" {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write activity feed cache")
			}
		}
	}

	observability.ActivityFeedRequests().WithLabelValues("miss").Inc()
	return response, nil
}

func (s *activityFeedService) cacheKey(filter repository.ActivityLogRecentFilter) string {
	if s.cache == nil {
		return ""
	}
	category := filter.Category
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("activity:feed:v1:%s:%d:%d:%d", category, filter.Page, filter.PageSize, filter.Since.Unix())
}

func clampPageSize(size int) int {
	if size <= 0 {
		return 20
	}
	if size > 100 {
		return 100
	}
	return size
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
