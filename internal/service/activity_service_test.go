package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
	err     error
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if m.err != nil {
		return m.err
	}
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

func (m *memoryActivityRepo) ListRecent(ctx context.Context, filter repository.ActivityLogRecentFilter) ([]models.ActivityLog, int64, error) {
	filtered := make([]models.ActivityLog, 0)
	for _, entry := range m.entries {
		if filter.Category != "" && string(entry.Category) != filter.Category {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered, int64(len(filtered)), nil
}

func (m *memoryActivityRepo) CountByCategory(ctx context.Context, since *time.Time) ([]repository.CategoryCount, error) {
	counts := map[models.ActivityCategory]int64{}
	for _, entry := range m.entries {
		counts[entry.Category]++
	}
	result := make([]repository.CategoryCount, 0, len(counts))
	for _, category := range models.ActivityCategories {
		if total, ok := counts[category]; ok {
			result = append(result, repository.CategoryCount{Category: category, Total: total})
		}
	}
	return result, nil
}

type recordingPublisher struct {
	published []dto.AdminActivityResponse
}

func (p *recordingPublisher) PublishActivity(ctx context.Context, activity dto.AdminActivityResponse) error {
	p.published = append(p.published, activity)
	return nil
}

func TestActivityServiceRecordStoresDetailsUnescaped(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, nil, testValidator(), fixedClock("2025-01-05"), testLogger())

	err := svc.Record(context.Background(), ActivityEntry{
		Action:      "Member Updated",
		Category:    models.CategoryMemberManagement,
		TargetLabel: "O'Neil",
		Details:     "Updated member O'Neil: guardian_name: Tom & Jerry -> Rina",
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)
	require.Equal(t, "Updated member O'Neil: guardian_name: Tom & Jerry -> Rina", repo.entries[0].Details)
}

func TestActivityServiceRecordMasksSecrets(t *testing.T) {
	repo := &memoryActivityRepo{}
	publisher := &recordingPublisher{}
	svc := NewActivityService(repo, publisher, testValidator(), fixedClock("2025-01-05"), testLogger())

	err := svc.Record(context.Background(), ActivityEntry{
		Action:      "User Updated",
		Category:    models.CategoryUserManagement,
		TargetLabel: "Dana",
		Details:     "Updated <script>alert(1)</script>user Dana",
		OldValues:   map[string]interface{}{"password": "old-secret", "name": "Dan"},
		NewValues:   map[string]interface{}{"password": "new-secret", "name": "Dana"},
		EntityType:  "user",
		EntityID:    ptrUint(5),
		Actor:       adminActor(),
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)

	entry := repo.entries[0]
	require.Equal(t, "***", entry.OldValues["password"])
	require.Equal(t, "***", entry.NewValues["password"])
	require.Equal(t, "Dana", entry.NewValues["name"])
	require.Equal(t, "Updated user Dana", entry.Details)
	require.Equal(t, "Dana Admin", entry.Actor)
	require.Equal(t, "10.0.0.7", *entry.IPAddress)
	require.Equal(t, day("2025-01-05").Add(9*time.Hour), entry.CreatedAt)

	require.Len(t, publisher.published, 1)
	require.Equal(t, uint(1), publisher.published[0].ID)
}

func TestActivityServiceRecordSystemActorAndEmptyValues(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, nil, testValidator(), clock.System(nil), testLogger())

	require.NoError(t, svc.Record(context.Background(), ActivityEntry{
		Action:    "Nightly Cleanup",
		Category:  models.CategorySystem,
		OldValues: map[string]interface{}{},
		Actor:     &ActivityActor{Name: "ghost"},
	}))

	entry := repo.entries[0]
	require.Equal(t, models.SystemActor, entry.Actor)
	require.Nil(t, entry.PerformedBy)
	require.Nil(t, entry.IPAddress)
	require.Nil(t, entry.OldValues)
	require.Nil(t, entry.NewValues)
}

func TestActivityServiceRecordRejectsUnknownCategory(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, nil, testValidator(), nil, testLogger())

	err := svc.Record(context.Background(), ActivityEntry{Action: "Anything", Category: "gardening"})
	require.True(t, IsValidation(err))

	err = svc.Record(context.Background(), ActivityEntry{Category: models.CategorySystem})
	require.True(t, IsValidation(err))
	require.Empty(t, repo.entries)
}

func TestActivityServiceRecordSurfacesStorageErrors(t *testing.T) {
	repo := &memoryActivityRepo{err: errors.New("disk full")}
	publisher := &recordingPublisher{}
	svc := NewActivityService(repo, publisher, testValidator(), nil, testLogger())

	err := svc.Record(context.Background(), ActivityEntry{Action: "Member Created", Category: models.CategoryMemberManagement})
	require.True(t, errors.Is(err, ErrStorage))
	require.Empty(t, publisher.published)
}

func TestActivityServicePublishesOnlyAfterCommit(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-05")
	publisher := &recordingPublisher{}
	svc := NewActivityService(repository.NewActivityLogRepository(f.db), publisher, testValidator(), f.clock, testLogger())
	tx := repository.NewTransactor(f.db)

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, svc.Record(ctx, ActivityEntry{Action: "Venue Created", Category: models.CategoryVenueManagement}))
		require.Empty(t, publisher.published)
		return errors.New("abort")
	})
	require.Error(t, err)
	require.Empty(t, publisher.published)
	require.Empty(t, f.activityLogs(t))

	err = tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return svc.Record(ctx, ActivityEntry{Action: "Venue Created", Category: models.CategoryVenueManagement})
	})
	require.NoError(t, err)
	require.Len(t, publisher.published, 1)
	require.Len(t, f.activityLogs(t), 1)
}

func TestActivityServiceListAndSummary(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-05")
	svc := f.activity
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, ActivityEntry{Action: "Member Created", Category: models.CategoryMemberManagement, Actor: adminActor()}))
	require.NoError(t, svc.Record(ctx, ActivityEntry{Action: "Member Updated", Category: models.CategoryMemberManagement, Actor: adminActor()}))
	require.NoError(t, svc.Record(ctx, ActivityEntry{Action: "Amenity Created", Category: models.CategoryAmenityManagement}))

	list, err := svc.List(ctx, dto.AdminActivityListRequest{Category: "member_management", Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, int64(2), list.Pagination.TotalItems)
	require.Equal(t, 2, list.Pagination.TotalPages)
	require.Equal(t, "Member Updated", list.Items[0].Action)

	list, err = svc.List(ctx, dto.AdminActivityListRequest{PerformedBy: 7, From: "2025-01-05", Until: "2025-01-05"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)

	summary, err := svc.Summary(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), summary.Total)
	require.Len(t, summary.Categories, 2)

	_, err = svc.List(ctx, dto.AdminActivityListRequest{Category: "gardening"})
	require.True(t, IsValidation(err))
}
