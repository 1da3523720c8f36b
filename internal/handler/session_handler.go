package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/service"
	"github.com/noah-isme/tahfiz-go-api/internal/utils"
)

// SessionHandler wires recitation session HTTP routes.
type SessionHandler struct {
	service service.RecitationService
	logger  zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service service.RecitationService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register attaches session endpoints to the router group.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("", h.record)
	router.Get("/:session_id", h.get)
	router.Post("/:session_id/finalize", h.finalize)
}

func (h *SessionHandler) record(c *fiber.Ctx) error {
	var payload dto.RecordSessionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Record(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session recorded", session)
}

func (h *SessionHandler) get(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if sessionID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	session, err := h.service.Get(c.Context(), sessionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session retrieved", session)
}

func (h *SessionHandler) finalize(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if sessionID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	var payload dto.FinalizeSessionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Finalize(c.Context(), sessionID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session finalized", session)
}

func (h *SessionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrInvalidVerseRange):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid verse range")
	case errors.Is(err, service.ErrInvalidGrade):
		return utils.SendError(c, fiber.StatusBadRequest, "grade out of range")
	case errors.Is(err, service.ErrSessionAlreadyCompleted):
		return utils.SendError(c, fiber.StatusConflict, "session already completed")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
