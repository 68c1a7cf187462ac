package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/observability"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

// AttendanceSnapshotService reconstructs the attendance matrix of a batch.
type AttendanceSnapshotService interface {
	BuildSnapshot(ctx context.Context, req dto.AttendanceSnapshotRequest) (dto.AttendanceSnapshot, error)
}

type attendanceSnapshotService struct {
	batches    repository.BatchRepository
	attendance repository.AttendanceRepository
	validator  *validator.Validate
	clock      clock.Clock
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// NewAttendanceSnapshotService constructs the snapshot builder.
func NewAttendanceSnapshotService(batches repository.BatchRepository, attendance repository.AttendanceRepository, validator *validator.Validate, clk clock.Clock, logger zerolog.Logger) AttendanceSnapshotService {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &attendanceSnapshotService{
		batches:    batches,
		attendance: attendance,
		validator:  validator,
		clock:      clk,
		tracer:     otel.Tracer("github.com/noah-isme/edutrack-admin-api/internal/service/attendance_snapshot"),
		logger:     logger.With().Str("component", "attendance_snapshot_service").Logger(),
	}
}

func (s *attendanceSnapshotService) BuildSnapshot(ctx context.Context, req dto.AttendanceSnapshotRequest) (dto.AttendanceSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AttendanceSnapshot{}, err
	}

	start := time.Now()
	defer func() {
		observability.SnapshotLatency().WithLabelValues(req.PersonType).Observe(time.Since(start).Seconds())
	}()

	ctx, span := s.tracer.Start(ctx, "attendance.snapshot", trace.WithAttributes(
		attribute.Int64("attendance.batch_id", int64(req.BatchID)),
		attribute.String("attendance.person_type", req.PersonType),
	))
	defer span.End()

	personType := models.PersonType(req.PersonType)
	currentDate := clock.Today(s.clock)
	if req.AsOf != "" {
		currentDate, _ = models.ParseDate(req.AsOf)
	}
	from, to := parseOptionalDate(req.From), parseOptionalDate(req.To)

	snapshot := dto.AttendanceSnapshot{
		BatchID:      req.BatchID,
		PersonType:   req.PersonType,
		CurrentDate:  models.FormatDate(currentDate),
		SessionDates: []string{},
		Days:         []dto.AttendanceDay{},
	}

	if _, err := s.batches.GetByID(ctx, req.BatchID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch_lookup_failed")
		return dto.AttendanceSnapshot{}, storageError("batch", err)
	}

	roster, err := s.batches.Roster(ctx, req.BatchID, personType)
	if err != nil {
		span.RecordError(err)
		return dto.AttendanceSnapshot{}, storageError("batch roster", err)
	}

	allSessions, err := s.batches.ListSessions(ctx, req.BatchID)
	if err != nil {
		span.RecordError(err)
		return dto.AttendanceSnapshot{}, storageError("batch sessions", err)
	}
	sessions := sessionsInRange(allSessions, from, to)

	span.SetAttributes(
		attribute.Int("attendance.roster_size", len(roster)),
		attribute.Int("attendance.session_count", len(sessions)),
	)
	if len(roster) == 0 || len(sessions) == 0 {
		return snapshot, nil
	}

	sessionIDs := make([]uint, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.ID)
	}
	rows, err := s.attendance.ListForSessions(ctx, personType, sessionIDs)
	if err != nil {
		span.RecordError(err)
		return dto.AttendanceSnapshot{}, storageError("attendance", err)
	}

	type key struct {
		personID  uint
		sessionID uint
	}
	persisted := make(map[key]models.Attendance, len(rows))
	for _, row := range rows {
		persisted[key{personID: row.PersonID, sessionID: row.BatchSessionID}] = row
	}

	seenDates := map[string]struct{}{}
	for _, session := range sessions {
		day := session.Day()
		date := models.FormatDate(day)
		if _, ok := seenDates[date]; !ok {
			seenDates[date] = struct{}{}
			snapshot.SessionDates = append(snapshot.SessionDates, date)
		}

		entries := make([]dto.AttendanceEntry, 0, len(roster))
		for _, person := range roster {
			var entry dto.AttendanceEntry
			if row, ok := persisted[key{personID: person.ID, sessionID: session.ID}]; ok {
				entry = persistedEntry(row, person, date)
			} else {
				entry = syntheticEntry(session.ID, person, date)
			}
			entry.PersonStatus = person.EffectiveStatus(person.Status, currentDate)
			entry.EffectivePaused = person.PausedOn(currentDate)
			applyExcuseOverlay(&entry, person.Excuse, day, currentDate)
			entries = append(entries, entry)
		}

		snapshot.Days = append(snapshot.Days, dto.AttendanceDay{
			Date:           date,
			BatchSessionID: session.ID,
			SessionStatus:  session.Status,
			StartTime:      session.StartTime,
			EndTime:        session.EndTime,
			Editable:       editableOn(day, currentDate),
			Records:        entries,
		})
	}

	return snapshot, nil
}

// editableOn is the single editability rule shared by the snapshot and mark operations.
func editableOn(sessionDate, currentDate time.Time) bool {
	return !models.DateOf(sessionDate).After(models.DateOf(currentDate))
}

// applyExcuseOverlay shows unmarked entries inside [currentDate, excused_until] as excused.
// Marked history is left untouched.
func applyExcuseOverlay(entry *dto.AttendanceEntry, excuse models.Excuse, sessionDate, currentDate time.Time) {
	if entry.MarkedAt != nil {
		return
	}
	until, ok := excuse.ExcusedUntilDate()
	if !ok {
		return
	}
	if sessionDate.Before(models.DateOf(currentDate)) || sessionDate.After(until) {
		return
	}
	entry.Status = models.AttendanceStatusExcused
	entry.ExcuseApplied = true
}

func persistedEntry(row models.Attendance, person models.PersonSummary, date string) dto.AttendanceEntry {
	id := row.ID
	return dto.AttendanceEntry{
		ID:             &id,
		Source:         dto.AttendanceSourcePersisted,
		PersonType:     string(person.Type),
		PersonID:       person.ID,
		PersonName:     person.Name,
		BatchSessionID: row.BatchSessionID,
		Date:           date,
		Status:         row.Status,
		Notes:          row.Notes,
		MarkedAt:       row.MarkedAt,
		MarkedBy:       row.MarkedBy,
		MarkedByName:   row.MarkedByName,
		ExcusedUntil:   dto.ExcusedUntilString(person.Excuse),
		ExcuseReason:   person.ExcuseReason,
	}
}

func syntheticEntry(sessionID uint, person models.PersonSummary, date string) dto.AttendanceEntry {
	return dto.AttendanceEntry{
		Source:         dto.AttendanceSourceSynthetic,
		PersonType:     string(person.Type),
		PersonID:       person.ID,
		PersonName:     person.Name,
		BatchSessionID: sessionID,
		Date:           date,
		Status:         models.AttendanceStatusNotMarked,
		ExcusedUntil:   dto.ExcusedUntilString(person.Excuse),
		ExcuseReason:   person.ExcuseReason,
	}
}

func sessionsInRange(sessions []models.BatchSession, from, to *time.Time) []models.BatchSession {
	filtered := make([]models.BatchSession, 0, len(sessions))
	for _, session := range sessions {
		day := session.Day()
		if from != nil && day.Before(*from) {
			continue
		}
		if to != nil && day.After(*to) {
			continue
		}
		filtered = append(filtered, session)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		di, dj := filtered[i].Day(), filtered[j].Day()
		if di.Equal(dj) {
			return filtered[i].ID < filtered[j].ID
		}
		return di.Before(dj)
	})
	return filtered
}

func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := models.ParseDate(value)
	if err != nil {
		return nil
	}
	return &parsed
}
