package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

func TestBatchSessionServiceScheduleAndReschedule(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-10")
	svc := NewBatchSessionService(repository.NewTransactor(f.db), repository.NewBatchRepository(f.db), f.activity, testValidator(), f.clock, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, f.batch.ID, dto.BatchSessionCreateRequest{Date: "2025-01-12", StartTime: "09:00", EndTime: "10:30"}, adminActor())
	require.NoError(t, err)
	require.False(t, created.Editable)
	require.Equal(t, models.SessionStatusScheduled, created.Status)

	moved, err := svc.Reschedule(ctx, f.batch.ID, created.ID, dto.BatchSessionRescheduleRequest{Date: "2025-01-09", Notes: ptrString("venue flooded")}, adminActor())
	require.NoError(t, err)
	require.Equal(t, "2025-01-09", moved.Date)
	require.Equal(t, models.SessionStatusRescheduled, moved.Status)
	require.True(t, moved.Editable)
	require.Equal(t, "09:00", moved.StartTime)

	sessions, err := svc.List(ctx, f.batch.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	logs := f.activityLogs(t)
	require.Len(t, logs, 2)
	require.Equal(t, models.CategoryBatchSessionManagement, logs[1].Category)
	require.Equal(t, "2025-01-12", logs[1].OldValues["date"])
	require.Equal(t, "2025-01-09", logs[1].NewValues["date"])
	require.NotContains(t, logs[1].NewValues, "start_time")
}

func TestBatchSessionServiceValidation(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-10")
	svc := NewBatchSessionService(repository.NewTransactor(f.db), repository.NewBatchRepository(f.db), f.activity, testValidator(), f.clock, testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, f.batch.ID, dto.BatchSessionCreateRequest{Date: "2025-01-12", StartTime: "11:00", EndTime: "10:00"}, adminActor())
	require.True(t, IsValidation(err))

	_, err = svc.Create(ctx, 404, dto.BatchSessionCreateRequest{Date: "2025-01-12"}, adminActor())
	require.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.UpdateStatus(ctx, f.batch.ID, 404, dto.BatchSessionStatusRequest{Status: models.SessionStatusCancelled}, adminActor())
	require.True(t, errors.Is(err, ErrNotFound))
	require.Empty(t, f.activityLogs(t))
}
