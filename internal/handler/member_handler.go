package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/service"
	"github.com/noah-isme/edutrack-admin-api/internal/utils"
)

// MemberHandler wires admin member endpoints.
type MemberHandler struct {
	service service.MemberService
	logger  zerolog.Logger
}

// NewMemberHandler constructs the handler.
func NewMemberHandler(service service.MemberService, logger zerolog.Logger) *MemberHandler {
	return &MemberHandler{
		service: service,
		logger:  logger.With().Str("component", "member_handler").Logger(),
	}
}

// Register attaches member routes to the router group.
func (h *MemberHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *MemberHandler) list(c *fiber.Ctx) error {
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
		return sendServiceError(c, h.logger, err, "failed to list members")
	}
	return utils.OK(c, response.Items, "members retrieved", response.Pagination)
}

func (h *MemberHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	member, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch member")
	}
	return utils.SendSuccess(c, "member retrieved", member)
}

func (h *MemberHandler) create(c *fiber.Ctx) error {
	var payload dto.MemberCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	member, err := h.service.Create(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create member")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "member created", member)
}

func (h *MemberHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.MemberUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	member, err := h.service.Update(c.UserContext(), id, payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update member")
	}
	return utils.SendSuccess(c, "member updated", member)
}

func (h *MemberHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.UserContext(), id, activityActorFromContext(c)); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete member")
	}
	return utils.SendSuccess(c, "member deleted", fiber.Map{"id": id})
}
