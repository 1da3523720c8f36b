package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tahfiz-go-api/internal/service"
	"github.com/noah-isme/tahfiz-go-api/internal/utils"
)

// EvaluationHandler wires evaluation HTTP routes.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches evaluation endpoints to the router group.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/sweep", h.sweep)
}

// RegisterStudentRoutes attaches the student-scoped evaluation trigger.
func (h *EvaluationHandler) RegisterStudentRoutes(router fiber.Router) {
	router.Post("/:id/evaluate", h.evaluate)
}

func (h *EvaluationHandler) evaluate(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evaluation, err := h.service.EvaluateStudent(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "active curriculum assignment not found")
		}
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "student evaluated", evaluation)
}

func (h *EvaluationHandler) sweep(c *fiber.Ctx) error {
	summary, err := h.service.EvaluateAllActiveStudents(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("evaluation sweep failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "evaluation sweep finished", summary)
}
