package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/repository"
	"github.com/noah-isme/tahfiz-go-api/internal/service"
	"github.com/noah-isme/tahfiz-go-api/internal/utils"
)

// CurriculumHandler wires curriculum HTTP routes.
type CurriculumHandler struct {
	service service.CurriculumService
	logger  zerolog.Logger
}

// NewCurriculumHandler constructs the handler.
func NewCurriculumHandler(service service.CurriculumService, logger zerolog.Logger) *CurriculumHandler {
	return &CurriculumHandler{
		service: service,
		logger:  logger.With().Str("component", "curriculum_handler").Logger(),
	}
}

// Register attaches curriculum endpoints to the router group.
func (h *CurriculumHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Delete("/:id", h.delete)
	router.Get("/:id/plans", h.listPlans)
	router.Post("/:id/plans/generate", h.generatePlans)
}

func (h *CurriculumHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	filter := repository.CurriculumFilter{
		Search:   c.Query("search"),
		Type:     c.Query("type"),
		Page:     page,
		PageSize: pageSize,
	}

	curricula, total, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "curricula retrieved", fiber.Map{
		"curricula": curricula,
		"total":     total,
	})
}

func (h *CurriculumHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	curriculum, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "curriculum retrieved", curriculum)
}

func (h *CurriculumHandler) create(c *fiber.Ctx) error {
	var payload dto.CurriculumCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	curriculum, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "curriculum created", curriculum)
}

func (h *CurriculumHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "curriculum deleted", fiber.Map{"id": id})
}

func (h *CurriculumHandler) listPlans(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	plans, err := h.service.ListPlans(c.Context(), id, c.Query("plan_type"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "plans retrieved", plans)
}

func (h *CurriculumHandler) generatePlans(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GeneratePlansRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	summary, err := h.service.GeneratePlans(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "plans generated", summary)
}

func (h *CurriculumHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrCurriculumNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "curriculum not found")
	case errors.Is(err, service.ErrUnknownTemplate):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown plan template")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *CurriculumHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
