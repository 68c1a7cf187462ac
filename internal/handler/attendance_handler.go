package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/service"
	"github.com/noah-isme/edutrack-admin-api/internal/utils"
)

// AttendanceHandler serves the attendance matrix and marking endpoints.
type AttendanceHandler struct {
	snapshots  service.AttendanceSnapshotService
	attendance service.AttendanceService
	excuses    service.ExcuseService
	logger     zerolog.Logger
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(snapshots service.AttendanceSnapshotService, attendance service.AttendanceService, excuses service.ExcuseService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		snapshots:  snapshots,
		attendance: attendance,
		excuses:    excuses,
		logger:     logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// RegisterBatchRoutes attaches the per-batch snapshot route.
func (h *AttendanceHandler) RegisterBatchRoutes(router fiber.Router) {
	router.Get("/:batchId/attendance", h.snapshot)
}

// Register attaches the marking and pause routes.
func (h *AttendanceHandler) Register(router fiber.Router) {
	router.Post("/attendance", h.mark)
	router.Post("/attendance/bulk", h.markBulk)
	router.Post("/excuses/toggle", h.toggleExcuse)
}

func (h *AttendanceHandler) snapshot(c *fiber.Ctx) error {
	batchID, err := parseUintParam(c, "batchId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid batch identifier")
	}

	personType := strings.ToLower(strings.TrimSpace(c.Query("person_type")))
	if personType == "" {
		personType = "member"
	}

	snapshot, err := h.snapshots.BuildSnapshot(c.UserContext(), dto.AttendanceSnapshotRequest{
		BatchID:    batchID,
		PersonType: personType,
		From:       strings.TrimSpace(c.Query("from")),
		To:         strings.TrimSpace(c.Query("to")),
	})
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to build attendance snapshot")
	}
	return utils.SendSuccess(c, "attendance snapshot", snapshot)
}

func (h *AttendanceHandler) mark(c *fiber.Ctx) error {
	var payload dto.MarkAttendanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, err := h.attendance.Mark(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to mark attendance")
	}
	return utils.SendSuccess(c, "attendance marked", record)
}

func (h *AttendanceHandler) markBulk(c *fiber.Ctx) error {
	var payload dto.BulkMarkAttendanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	records, err := h.attendance.MarkBulk(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to mark attendance")
	}
	return utils.SendSuccess(c, "attendance marked", records)
}

func (h *AttendanceHandler) toggleExcuse(c *fiber.Ctx) error {
	var payload dto.ExcuseToggleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	person, err := h.excuses.Toggle(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update pause state")
	}

	message := "person resumed"
	if payload.Action == service.ExcuseActionPause {
		message = "person paused"
	}
	return utils.SendSuccess(c, message, person)
}
