package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/handler"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
	"github.com/noah-isme/edutrack-admin-api/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

type adminApp struct {
	app   *fiber.App
	db    *gorm.DB
	batch models.Batch
}

func openTestDB(t *testing.T) *gorm.DB {
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

// newAdminApp mounts the admin handlers with an authenticated admin and the
// clock pinned to today at 09:00 UTC.
func newAdminApp(t *testing.T, today string) *adminApp {
	t.Helper()
	db := openTestDB(t)
	current, err := models.ParseDate(today)
	require.NoError(t, err)
	clk := clock.Fixed(current.Add(9 * time.Hour))
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	tx := repository.NewTransactor(db)
	activityRepo := repository.NewActivityLogRepository(db)
	batches := repository.NewBatchRepository(db)
	people := repository.NewPersonRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	activity := service.NewActivityService(activityRepo, nil, validate, clk, logger)
	attendanceHandler := handler.NewAttendanceHandler(
		service.NewAttendanceSnapshotService(batches, attendanceRepo, validate, clk, logger),
		service.NewAttendanceService(tx, batches, people, attendanceRepo, activity, validate, clk, logger),
		service.NewExcuseService(tx, people, activity, validate, clk, logger),
		logger,
	)
	memberHandler := handler.NewMemberHandler(
		service.NewMemberService(tx, repository.NewMemberRepository(db), validate, activity, clk, logger),
		logger,
	)

	app := fiber.New()
	admin := app.Group("/api/admin", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_name", "Dana Admin")
		c.Locals("user_role", "admin")
		return c.Next()
	})
	handler.NewAdminActivityHandler(activity, logger).Register(admin.Group("/activity-logs"))
	memberHandler.Register(admin.Group("/members"))
	attendanceHandler.RegisterBatchRoutes(admin.Group("/batches"))
	attendanceHandler.Register(admin)

	batch := models.Batch{Name: "Robotics A", Status: "active"}
	require.NoError(t, db.Create(&batch).Error)

	return &adminApp{app: app, db: db, batch: batch}
}

func (a *adminApp) addSession(t *testing.T, date string) models.BatchSession {
	t.Helper()
	parsed, err := models.ParseDate(date)
	require.NoError(t, err)
	session := models.BatchSession{BatchID: a.batch.ID, Date: models.NewDate(parsed), StartTime: "09:00", EndTime: "11:00", Status: models.SessionStatusScheduled}
	require.NoError(t, a.db.Create(&session).Error)
	return session
}

func (a *adminApp) enrollMember(t *testing.T, name string) models.Member {
	t.Helper()
	member := models.Member{Name: name, Status: models.PersonStatusActive}
	require.NoError(t, a.db.Create(&member).Error)
	require.NoError(t, a.db.Create(&models.BatchMember{BatchID: a.batch.ID, MemberID: member.ID, Status: "active"}).Error)
	return member
}

func (a *adminApp) do(t *testing.T, method, target string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (a *adminApp) get(t *testing.T, target string) (int, envelope) {
	return a.do(t, http.MethodGet, target, nil)
}

func (a *adminApp) post(t *testing.T, target string, body interface{}) (int, envelope) {
	return a.do(t, http.MethodPost, target, body)
}
