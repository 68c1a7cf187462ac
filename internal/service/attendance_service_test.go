package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

func TestMarkAttendanceShowsInSnapshotAndLogsOnce(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-02")
	f.addSession(t, "2025-01-01")
	member := f.enrollMember(t, "Maya")

	record, err := f.attendance.Mark(context.Background(), dto.MarkAttendanceRequest{
		PersonType: "member",
		PersonID:   member.ID,
		BatchID:    f.batch.ID,
		Date:       "2025-01-01",
		Status:     models.AttendanceStatusPresent,
		Notes:      ptrString("<b>on time</b>"),
	}, adminActor())
	require.NoError(t, err)
	require.NotZero(t, record.ID)
	require.Equal(t, "2025-01-01", record.Date)
	require.Equal(t, "on time", *record.Notes)

	snapshot, err := f.snapshot.BuildSnapshot(context.Background(), dto.AttendanceSnapshotRequest{BatchID: f.batch.ID, PersonType: "member"})
	require.NoError(t, err)
	entry := snapshot.Records()[0]
	require.Equal(t, models.AttendanceStatusPresent, entry.Status)
	require.NotNil(t, entry.MarkedAt)
	require.Equal(t, uint(7), *entry.MarkedBy)
	require.Equal(t, "Dana Admin", *entry.MarkedByName)

	logs := f.activityLogs(t)
	require.Len(t, logs, 1)
	require.Equal(t, models.CategoryAttendanceManagement, logs[0].Category)
	require.Equal(t, "Dana Admin", logs[0].Actor)
	require.Equal(t, uint(7), *logs[0].PerformedBy)
	require.Equal(t, "attendance", *logs[0].EntityType)
	require.Nil(t, logs[0].OldValues)
	require.Equal(t, "present", logs[0].NewValues["status"])
	require.Equal(t, "2025-01-01", logs[0].NewValues["date"])
}

func TestMarkAttendanceOverwritesAndDiffsChangedFields(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-02")
	f.addSession(t, "2025-01-01")
	member := f.enrollMember(t, "Maya")

	req := dto.MarkAttendanceRequest{PersonType: "member", PersonID: member.ID, BatchID: f.batch.ID, Date: "2025-01-01", Status: models.AttendanceStatusAbsent}
	first, err := f.attendance.Mark(context.Background(), req, adminActor())
	require.NoError(t, err)

	req.Status = models.AttendanceStatusPresent
	second, err := f.attendance.Mark(context.Background(), req, adminActor())
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var rows int64
	require.NoError(t, f.db.Model(&models.Attendance{}).Count(&rows).Error)
	require.Equal(t, int64(1), rows)

	logs := f.activityLogs(t)
	require.Len(t, logs, 2)
	require.Equal(t, "absent", logs[1].OldValues["status"])
	require.Equal(t, "present", logs[1].NewValues["status"])
	require.NotContains(t, logs[1].OldValues, "marked_by")
}

func TestMarkAttendanceKeepsNotesVerbatim(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-02")
	f.addSession(t, "2025-01-01")
	member := f.enrollMember(t, "Maya")

	record, err := f.attendance.Mark(context.Background(), dto.MarkAttendanceRequest{
		PersonType: "member",
		PersonID:   member.ID,
		BatchID:    f.batch.ID,
		Date:       "2025-01-01",
		Status:     models.AttendanceStatusPresent,
		Notes:      ptrString("Late & tired, it's fine"),
	}, adminActor())
	require.NoError(t, err)
	require.Equal(t, "Late & tired, it's fine", *record.Notes)

	var stored models.Attendance
	require.NoError(t, f.db.First(&stored, record.ID).Error)
	require.Equal(t, "Late & tired, it's fine", *stored.Notes)

	logs := f.activityLogs(t)
	require.Len(t, logs, 1)
	require.Equal(t, "Late & tired, it's fine", logs[0].NewValues["notes"])
}

func TestMarkAttendanceEditabilityBoundary(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-10")
	f.addSession(t, "2025-01-10")
	f.addSession(t, "2025-01-11")
	member := f.enrollMember(t, "Maya")

	_, err := f.attendance.Mark(context.Background(), dto.MarkAttendanceRequest{
		PersonType: "member", PersonID: member.ID, BatchID: f.batch.ID, Date: "2025-01-10", Status: models.AttendanceStatusPresent,
	}, adminActor())
	require.NoError(t, err)

	_, err = f.attendance.Mark(context.Background(), dto.MarkAttendanceRequest{
		PersonType: "member", PersonID: member.ID, BatchID: f.batch.ID, Date: "2025-01-11", Status: models.AttendanceStatusPresent,
	}, adminActor())
	require.True(t, errors.Is(err, ErrEditability))
	require.Len(t, f.activityLogs(t), 1)
}

func TestMarkAttendanceNotFound(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-10")
	f.addSession(t, "2025-01-08")
	member := f.enrollMember(t, "Maya")
	outsider := models.Member{Name: "Outsider", Status: models.PersonStatusActive}
	require.NoError(t, f.db.Create(&outsider).Error)

	cases := []dto.MarkAttendanceRequest{
		{PersonType: "member", PersonID: member.ID, BatchID: 404, Date: "2025-01-08", Status: "present"},
		{PersonType: "member", PersonID: member.ID, BatchID: f.batch.ID, Date: "2025-01-09", Status: "present"},
		{PersonType: "member", PersonID: outsider.ID, BatchID: f.batch.ID, Date: "2025-01-08", Status: "present"},
		{PersonType: "partner", PersonID: 999, BatchID: f.batch.ID, Date: "2025-01-08", Status: "present"},
	}
	for _, req := range cases {
		_, err := f.attendance.Mark(context.Background(), req, adminActor())
		require.Truef(t, errors.Is(err, ErrNotFound), "expected not found for %+v, got %v", req, err)
	}
	require.Empty(t, f.activityLogs(t))
}

func TestMarkAttendanceRejectsInvalidStatus(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-10")
	f.addSession(t, "2025-01-08")
	member := f.enrollMember(t, "Maya")

	_, err := f.attendance.Mark(context.Background(), dto.MarkAttendanceRequest{
		PersonType: "member", PersonID: member.ID, BatchID: f.batch.ID, Date: "2025-01-08", Status: "late",
	}, adminActor())
	require.True(t, IsValidation(err))
}

func TestMarkAttendanceWithoutActorIsSystem(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-10")
	f.addSession(t, "2025-01-08")
	partner := f.assignPartner(t, "Coach Citra")

	record, err := f.attendance.Mark(context.Background(), dto.MarkAttendanceRequest{
		PersonType: "partner", PersonID: partner.ID, BatchID: f.batch.ID, Date: "2025-01-08", Status: "present",
	}, nil)
	require.NoError(t, err)
	require.Nil(t, record.MarkedBy)

	logs := f.activityLogs(t)
	require.Len(t, logs, 1)
	require.Equal(t, models.SystemActor, logs[0].Actor)
	require.Nil(t, logs[0].PerformedBy)
	require.Nil(t, logs[0].IPAddress)
}

func TestMarkBulkRollsBackOnFailure(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-10")
	f.addSession(t, "2025-01-08")
	first := f.enrollMember(t, "Ari")
	second := f.enrollMember(t, "Bima")

	_, err := f.attendance.MarkBulk(context.Background(), dto.BulkMarkAttendanceRequest{
		PersonType: "member",
		BatchID:    f.batch.ID,
		Date:       "2025-01-08",
		Items: []dto.BulkAttendanceItem{
			{PersonID: first.ID, Status: "present"},
			{PersonID: 999, Status: "present"},
		},
	}, adminActor())
	require.True(t, errors.Is(err, ErrNotFound))

	var rows int64
	require.NoError(t, f.db.Model(&models.Attendance{}).Count(&rows).Error)
	require.Zero(t, rows)
	require.Empty(t, f.activityLogs(t))

	records, err := f.attendance.MarkBulk(context.Background(), dto.BulkMarkAttendanceRequest{
		PersonType: "member",
		BatchID:    f.batch.ID,
		Date:       "2025-01-08",
		Items: []dto.BulkAttendanceItem{
			{PersonID: first.ID, Status: "present"},
			{PersonID: second.ID, Status: "absent"},
		},
	}, adminActor())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, f.activityLogs(t), 2)
}

func TestMarkBulkRejectsDuplicatePeople(t *testing.T) {
	f := newAttendanceFixture(t, "2025-01-10")

	_, err := f.attendance.MarkBulk(context.Background(), dto.BulkMarkAttendanceRequest{
		PersonType: "member",
		BatchID:    f.batch.ID,
		Date:       "2025-01-08",
		Items: []dto.BulkAttendanceItem{
			{PersonID: 1, Status: "present"},
			{PersonID: 1, Status: "absent"},
		},
	}, adminActor())
	require.True(t, IsValidation(err))
}
