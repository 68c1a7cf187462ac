package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/service"
	"github.com/noah-isme/edutrack-admin-api/internal/utils"
)

// PartnerHandler wires admin partner endpoints.
type PartnerHandler struct {
	service service.PartnerService
	logger  zerolog.Logger
}

// NewPartnerHandler constructs the handler.
func NewPartnerHandler(service service.PartnerService, logger zerolog.Logger) *PartnerHandler {
	return &PartnerHandler{
		service: service,
		logger:  logger.With().Str("component", "partner_handler").Logger(),
	}
}

// Register attaches partner routes to the router group.
func (h *PartnerHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *PartnerHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c, 20, 100)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.List(c.UserContext(), dto.PersonListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Status:   c.Query("status"),
	})
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list partners")
	}
	return utils.OK(c, response.Items, "partners retrieved", response.Pagination)
}

func (h *PartnerHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	partner, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch partner")
	}
	return utils.SendSuccess(c, "partner retrieved", partner)
}

func (h *PartnerHandler) create(c *fiber.Ctx) error {
	var payload dto.PartnerCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	partner, err := h.service.Create(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create partner")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "partner created", partner)
}

func (h *PartnerHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.PartnerUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	partner, err := h.service.Update(c.UserContext(), id, payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update partner")
	}
	return utils.SendSuccess(c, "partner updated", partner)
}

func (h *PartnerHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.UserContext(), id, activityActorFromContext(c)); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete partner")
	}
	return utils.SendSuccess(c, "partner deleted", fiber.Map{"id": id})
}
