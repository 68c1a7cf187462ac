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

func receive(t *testing.T, ch <-chan dto.AdminActivityResponse) dto.AdminActivityResponse {
	t.Helper()
	select {
	case activity := <-ch:
		return activity
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for activity")
		return dto.AdminActivityResponse{}
	}
}

func TestActivityStreamDeliversInProcessWithCategoryFilter(t *testing.T) {
	next := &recordingPublisher{}
	stream := NewActivityStream(next, nil, nil, "", testLogger())

	all, stopAll := stream.Subscribe("")
	defer stopAll()
	attendance, stopAttendance := stream.Subscribe(models.CategoryAttendanceManagement)
	defer stopAttendance()

	ctx := context.Background()
	require.NoError(t, stream.PublishActivity(ctx, dto.AdminActivityResponse{ID: 1, Category: models.CategoryMemberManagement}))
	require.NoError(t, stream.PublishActivity(ctx, dto.AdminActivityResponse{ID: 2, Category: models.CategoryAttendanceManagement}))

	require.EqualValues(t, 1, receive(t, all).ID)
	require.EqualValues(t, 2, receive(t, all).ID)
	require.EqualValues(t, 2, receive(t, attendance).ID)
	require.Len(t, next.published, 2)
}

func TestActivityStreamCleanupIsIdempotent(t *testing.T) {
	stream := NewActivityStream(nil, nil, nil, "", testLogger())
	ch, cleanup := stream.Subscribe("")
	cleanup()
	cleanup()

	_, open := <-ch
	require.False(t, open)
	require.NoError(t, stream.PublishActivity(context.Background(), dto.AdminActivityResponse{ID: 1}))
}

func TestActivityStreamFollowsRedisChannel(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	publisher := NewActivityPublisher(client, nil, "edutrack:activity", testLogger())
	stream := NewActivityStream(publisher, client, nil, "edutrack:activity", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream.Start(ctx)

	require.Eventually(t, func() bool {
		return server.PubSubNumSub("edutrack:activity")["edutrack:activity"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	events, stop := stream.Subscribe("")
	defer stop()

	require.NoError(t, stream.PublishActivity(ctx, dto.AdminActivityResponse{ID: 9, Action: "Person Paused", Category: models.CategoryAttendanceManagement}))

	got := receive(t, events)
	require.EqualValues(t, 9, got.ID)
	require.Equal(t, "Person Paused", got.Action)
}

func TestActivityStreamResubscribesAfterRedisRestart(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	publisher := NewActivityPublisher(client, nil, "edutrack:activity", testLogger())
	stream := NewActivityStream(publisher, client, nil, "edutrack:activity", testLogger())
	stream.(*activityStream).retryMin = 10 * time.Millisecond
	stream.(*activityStream).retryMax = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream.Start(ctx)

	subscribed := func() bool {
		return server.PubSubNumSub("edutrack:activity")["edutrack:activity"] == 1
	}
	require.Eventually(t, subscribed, 2*time.Second, 10*time.Millisecond)

	server.Close()
	require.NoError(t, server.Restart())
	require.Eventually(t, subscribed, 3*time.Second, 10*time.Millisecond)

	events, stop := stream.Subscribe("")
	defer stop()

	require.NoError(t, stream.PublishActivity(ctx, dto.AdminActivityResponse{ID: 11, Action: "Attendance Marked", Category: models.CategoryAttendanceManagement}))

	got := receive(t, events)
	require.EqualValues(t, 11, got.ID)
}
