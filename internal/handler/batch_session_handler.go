package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/service"
	"github.com/noah-isme/edutrack-admin-api/internal/utils"
)

// BatchSessionHandler manages the session calendar of a batch.
type BatchSessionHandler struct {
	service service.BatchSessionService
	logger  zerolog.Logger
}

// NewBatchSessionHandler constructs the handler.
func NewBatchSessionHandler(service service.BatchSessionService, logger zerolog.Logger) *BatchSessionHandler {
	return &BatchSessionHandler{
		service: service,
		logger:  logger.With().Str("component", "batch_session_handler").Logger(),
	}
}

// Register attaches session routes below /batches.
func (h *BatchSessionHandler) Register(router fiber.Router) {
	router.Get("/:batchId/sessions", h.list)
	router.Post("/:batchId/sessions", h.create)
	router.Patch("/:batchId/sessions/:sessionId/reschedule", h.reschedule)
	router.Patch("/:batchId/sessions/:sessionId/status", h.status)
}

func (h *BatchSessionHandler) list(c *fiber.Ctx) error {
	batchID, err := parseUintParam(c, "batchId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid batch identifier")
	}

	sessions, err := h.service.List(c.UserContext(), batchID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list sessions")
	}
	return utils.SendSuccess(c, "sessions retrieved", sessions)
}

func (h *BatchSessionHandler) create(c *fiber.Ctx) error {
	batchID, err := parseUintParam(c, "batchId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid batch identifier")
	}

	var payload dto.BatchSessionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	session, err := h.service.Create(c.UserContext(), batchID, payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create session")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session created", session)
}

func (h *BatchSessionHandler) reschedule(c *fiber.Ctx) error {
	batchID, sessionID, err := h.sessionParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.BatchSessionRescheduleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	session, err := h.service.Reschedule(c.UserContext(), batchID, sessionID, payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to reschedule session")
	}
	return utils.SendSuccess(c, "session rescheduled", session)
}

func (h *BatchSessionHandler) status(c *fiber.Ctx) error {
	batchID, sessionID, err := h.sessionParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.BatchSessionStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	session, err := h.service.UpdateStatus(c.UserContext(), batchID, sessionID, payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update session")
	}
	return utils.SendSuccess(c, "session updated", session)
}

func (h *BatchSessionHandler) sessionParams(c *fiber.Ctx) (uint, uint, error) {
	batchID, err := parseUintParam(c, "batchId")
	if err != nil {
		return 0, 0, err
	}
	sessionID, err := parseUintParam(c, "sessionId")
	if err != nil {
		return 0, 0, err
	}
	return batchID, sessionID, nil
}
