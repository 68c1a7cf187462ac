package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

// ActivityLogFilter narrows activity log queries.
type ActivityLogFilter struct {
	Page        int
	PageSize    int
	PerformedBy *uint
	Category    string
	Action      string
	EntityType  string
	EntityID    *uint
	From        *time.Time
	Until       *time.Time
}

// ActivityLogRecentFilter narrows the recent activity feed.
type ActivityLogRecentFilter struct {
	Since    time.Time
	Until    time.Time
	Category string
	Page     int
	PageSize int
}

// CategoryCount is the number of entries recorded for a category.
type CategoryCount struct {
	Category models.ActivityCategory `json:"category"`
	Total    int64                   `json:"total"`
}

// ActivityLogRepository persists audit trail events. Entries are insert-only.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
	ListRecent(ctx context.Context, filter ActivityLogRecentFilter) ([]models.ActivityLog, int64, error)
	CountByCategory(ctx context.Context, since *time.Time) ([]CategoryCount, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return conn(ctx, r.db).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := conn(ctx, r.db).Model(&models.ActivityLog{})

	if filter.PerformedBy != nil {
		query = query.Where("performed_by = ?", *filter.PerformedBy)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.Until != nil {
		query = query.Where("created_at <= ?", *filter.Until)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.PageSize)

	var entries []models.ActivityLog
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *activityLogRepository) ListRecent(ctx context.Context, filter ActivityLogRecentFilter) ([]models.ActivityLog, int64, error) {
	query := conn(ctx, r.db).Model(&models.ActivityLog{}).
		Where("created_at >= ?", filter.Since).
		Where("created_at <= ?", filter.Until)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.PageSize)

	var entries []models.ActivityLog
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *activityLogRepository) CountByCategory(ctx context.Context, since *time.Time) ([]CategoryCount, error) {
	query := conn(ctx, r.db).Model(&models.ActivityLog{}).
		Select("category, COUNT(*) AS total").
		Group("category").
		Order("category")
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}

	var counts []CategoryCount
	if err := query.Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
