package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/service"
	"github.com/noah-isme/edutrack-admin-api/internal/utils"
)

// ActivityFeedHandler serves the recent activity feed of the dashboard.
type ActivityFeedHandler struct {
	service service.ActivityFeedService
	logger  zerolog.Logger
}

// NewActivityFeedHandler constructs the handler instance.
func NewActivityFeedHandler(service service.ActivityFeedService, logger zerolog.Logger) *ActivityFeedHandler {
	return &ActivityFeedHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_feed_handler").Logger(),
	}
}

// Register wires the activity feed routes.
func (h *ActivityFeedHandler) Register(router fiber.Router) {
	router.Get("/feed", h.feed)
}

func (h *ActivityFeedHandler) feed(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c, 20, 100)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.ActivityFeedRequest{
		Category: strings.TrimSpace(c.Query("category")),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.service.Recent(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch activity feed")
	}

	if result.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "recent activity retrieved", result)
}
