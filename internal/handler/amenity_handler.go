package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/service"
	"github.com/noah-isme/edutrack-admin-api/internal/utils"
)

// AmenityHandler wires amenity endpoints.
type AmenityHandler struct {
	service service.AmenityService
	logger  zerolog.Logger
}

// NewAmenityHandler constructs the handler.
func NewAmenityHandler(service service.AmenityService, logger zerolog.Logger) *AmenityHandler {
	return &AmenityHandler{
		service: service,
		logger:  logger.With().Str("component", "amenity_handler").Logger(),
	}
}

// Register attaches amenity routes.
func (h *AmenityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Put("/bulk", h.bulkUpdate)
}

func (h *AmenityHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c, 20, 100)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.List(c.UserContext(), dto.AmenityListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Status:   c.Query("status"),
	})
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list amenities")
	}
	return utils.OK(c, response.Items, "amenities retrieved", response.Pagination)
}

func (h *AmenityHandler) create(c *fiber.Ctx) error {
	var payload dto.AmenityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	amenity, err := h.service.Create(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create amenity")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "amenity created", amenity)
}

func (h *AmenityHandler) bulkUpdate(c *fiber.Ctx) error {
	var payload dto.AmenityBulkUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	amenities, err := h.service.BulkUpdate(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update amenities")
	}
	return utils.SendSuccess(c, "amenities updated", amenities)
}
