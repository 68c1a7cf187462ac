package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/service"
	"github.com/noah-isme/edutrack-admin-api/internal/utils"
)

// AdminActivityHandler exposes activity log endpoints.
type AdminActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewAdminActivityHandler constructs the handler.
func NewAdminActivityHandler(service service.ActivityService, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/summary", h.summary)
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c, 25, 200)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	performedBy, err := parseQueryInt(c, "performed_by")
	if err != nil || performedBy < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid performed_by")
	}
	entityID, err := parseQueryInt(c, "entity_id")
	if err != nil || entityID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid entity_id")
	}

	req := dto.AdminActivityListRequest{
		Page:        page,
		PageSize:    pageSize,
		PerformedBy: uint(performedBy),
		Category:    strings.TrimSpace(c.Query("category")),
		Action:      c.Query("action"),
		EntityType:  c.Query("entity_type"),
		EntityID:    uint(entityID),
		From:        strings.TrimSpace(c.Query("from")),
		Until:       strings.TrimSpace(c.Query("until")),
	}

	response, err := h.service.List(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list activity logs")
	}

	return utils.OK(c, response.Items, "activity logs", response.Pagination)
}

func (h *AdminActivityHandler) summary(c *fiber.Ctx) error {
	var since *time.Time
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid since date")
		}
		since = &parsed
	}

	response, err := h.service.Summary(c.UserContext(), since)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to summarise activity logs")
	}
	return utils.SendSuccess(c, "activity summary", response)
}
