package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// setupTestDB opens a private in-memory database per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.ActivityLog{},
		&models.Member{},
		&models.Partner{},
		&models.Batch{},
		&models.BatchSession{},
		&models.BatchMember{},
		&models.BatchPartner{},
		&models.Attendance{},
		&models.Amenity{},
	))
	return db
}

func day(value string) time.Time {
	parsed, err := models.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return parsed
}

// fixedClock pins the current date to value at 09:00 UTC.
func fixedClock(value string) clock.Clock {
	return clock.Fixed(day(value).Add(9 * time.Hour))
}

// attendanceFixture wires the attendance services against one database.
type attendanceFixture struct {
	db         *gorm.DB
	clock      clock.Clock
	activity   ActivityService
	snapshot   AttendanceSnapshotService
	attendance AttendanceService
	excuse     ExcuseService
	batch      models.Batch
}

func newAttendanceFixture(t *testing.T, today string) *attendanceFixture {
	t.Helper()
	db := setupTestDB(t)
	clk := fixedClock(today)
	validate := testValidator()
	logger := testLogger()

	tx := repository.NewTransactor(db)
	batches := repository.NewBatchRepository(db)
	people := repository.NewPersonRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	activity := NewActivityService(repository.NewActivityLogRepository(db), nil, validate, clk, logger)

	batch := models.Batch{Name: "Robotics A", Status: "active"}
	require.NoError(t, db.Create(&batch).Error)

	return &attendanceFixture{
		db:         db,
		clock:      clk,
		activity:   activity,
		snapshot:   NewAttendanceSnapshotService(batches, attendanceRepo, validate, clk, logger),
		attendance: NewAttendanceService(tx, batches, people, attendanceRepo, activity, validate, clk, logger),
		excuse:     NewExcuseService(tx, people, activity, validate, clk, logger),
		batch:      batch,
	}
}

func (f *attendanceFixture) addSession(t *testing.T, date string) models.BatchSession {
	t.Helper()
	session := models.BatchSession{BatchID: f.batch.ID, Date: models.NewDate(day(date)), StartTime: "09:00", EndTime: "11:00", Status: models.SessionStatusScheduled}
	require.NoError(t, f.db.Create(&session).Error)
	return session
}

func (f *attendanceFixture) enrollMember(t *testing.T, name string) models.Member {
	t.Helper()
	member := models.Member{Name: name, Status: models.PersonStatusActive}
	require.NoError(t, f.db.Create(&member).Error)
	require.NoError(t, f.db.Create(&models.BatchMember{BatchID: f.batch.ID, MemberID: member.ID, Status: "active"}).Error)
	return member
}

func (f *attendanceFixture) assignPartner(t *testing.T, name string) models.Partner {
	t.Helper()
	partner := models.Partner{Name: name, Status: models.PersonStatusActive}
	require.NoError(t, f.db.Create(&partner).Error)
	require.NoError(t, f.db.Create(&models.BatchPartner{BatchID: f.batch.ID, PartnerID: partner.ID, Status: "active"}).Error)
	return partner
}

func (f *attendanceFixture) activityLogs(t *testing.T) []models.ActivityLog {
	t.Helper()
	var logs []models.ActivityLog
	require.NoError(t, f.db.WithContext(context.Background()).Order("id ASC").Find(&logs).Error)
	return logs
}

func adminActor() *ActivityActor {
	return &ActivityActor{ID: 7, Name: "Dana Admin", Role: "admin", IPAddress: "10.0.0.7"}
}

func ptrString(v string) *string {
	return &v
}

func ptrUint(v uint) *uint {
	return &v
}
