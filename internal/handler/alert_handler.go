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

// AlertHandler wires curriculum alert HTTP routes.
type AlertHandler struct {
	service service.AlertService
	logger  zerolog.Logger
}

// NewAlertHandler constructs the handler.
func NewAlertHandler(service service.AlertService, logger zerolog.Logger) *AlertHandler {
	return &AlertHandler{
		service: service,
		logger:  logger.With().Str("component", "alert_handler").Logger(),
	}
}

// Register attaches alert endpoints to the router group.
func (h *AlertHandler) Register(router fiber.Router) {
	router.Get("", h.listPending)
	router.Post("/:id/decision", h.decide)
	router.Post("/:id/dismiss", h.dismiss)
}

func (h *AlertHandler) listPending(c *fiber.Ctx) error {
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id")
	}
	teacherID, err := parseQueryUint(c, "teacher_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid teacher_id")
	}

	filter := repository.AlertFilter{
		StudentID: studentID,
		TeacherID: teacherID,
		AlertType: c.Query("alert_type"),
		Priority:  c.Query("priority"),
	}

	alerts, err := h.service.ListPending(c.Context(), filter)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "pending alerts retrieved", alerts)
}

func (h *AlertHandler) decide(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DecideAlertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Decide(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "alert decision recorded", result)
}

func (h *AlertHandler) dismiss(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload struct {
		ReviewerID uint   `json:"reviewer_id"`
		Notes      string `json:"notes"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	alert, err := h.service.Dismiss(c.Context(), id, payload.ReviewerID, payload.Notes)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "alert dismissed", alert)
}

func (h *AlertHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAlertNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "alert not found")
	case errors.Is(err, service.ErrAlertNotActionable):
		return utils.SendError(c, fiber.StatusConflict, "alert state does not permit this action")
	case errors.Is(err, service.ErrAlertConflict):
		return utils.SendError(c, fiber.StatusConflict, "alert was modified concurrently")
	case errors.Is(err, service.ErrMissingTargetCurriculum):
		return utils.SendError(c, fiber.StatusBadRequest, "target curriculum required")
	case errors.Is(err, service.ErrCurriculumNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "curriculum not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AlertHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
