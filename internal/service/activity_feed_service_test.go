package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

func TestActivityFeedServiceCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	now := day("2025-01-05").Add(9 * time.Hour)
	repo := &memoryActivityRepo{entries: []models.ActivityLog{
		{ID: 1, Action: "Member Created", Actor: "Dana Admin", Category: models.CategoryMemberManagement, CreatedAt: now},
	}}

	svc := NewActivityFeedService(repo, redisClient, time.Minute, testValidator(), fixedClock("2025-01-05"), testLogger())

	resp, err := svc.Recent(context.Background(), dto.ActivityFeedRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.False(t, resp.CacheHit)
	require.Len(t, resp.Items, 1)

	// the cached page survives changes to the store until the TTL expires
	repo.entries = nil

	cached, err := svc.Recent(context.Background(), dto.ActivityFeedRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Len(t, cached.Items, 1)
	require.Equal(t, "Member Created", cached.Items[0].Action)

	server.FastForward(2 * time.Minute)

	fresh, err := svc.Recent(context.Background(), dto.ActivityFeedRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.Empty(t, fresh.Items)
}

func TestActivityFeedServiceFilters(t *testing.T) {
	repo := &memoryActivityRepo{entries: []models.ActivityLog{
		{ID: 1, Action: "Member Created", Category: models.CategoryMemberManagement, CreatedAt: time.Now()},
		{ID: 2, Action: "Attendance Marked", Category: models.CategoryAttendanceManagement, CreatedAt: time.Now()},
	}}

	svc := NewActivityFeedService(repo, nil, time.Minute, testValidator(), nil, testLogger())

	resp, err := svc.Recent(context.Background(), dto.ActivityFeedRequest{Category: "attendance_management"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "Attendance Marked", resp.Items[0].Action)
	require.Equal(t, 20, resp.Pagination.PageSize)

	_, err = svc.Recent(context.Background(), dto.ActivityFeedRequest{Category: "gardening"})
	require.True(t, IsValidation(err))
}
