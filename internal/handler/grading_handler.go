package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader-api/internal/dto"
	"github.com/noah-isme/gema-grader-api/internal/service"
	"github.com/noah-isme/gema-grader-api/internal/utils"
)

// GradingHandler wires grading run HTTP routes.
type GradingHandler struct {
	service service.GradingRunService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingRunService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("/runs", h.run)
	router.Get("/runs/:uid", h.get)
}

// run executes a grading run synchronously and returns the full report. The
// caller decides when a run happens; the grader never schedules itself.
func (h *GradingHandler) run(c *fiber.Ctx) error {
	var payload dto.GradingRunRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.AssignmentRef == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "assignment_ref is required")
	}

	report, err := h.service.Run(c.Context(), payload.AssignmentRef)
	if err != nil {
		return h.internalError(c, err)
	}

	if report.Aborted {
		return utils.SendSuccessWithStatus(c, fiber.StatusOK, "grading run stopped early: "+report.AbortReason, report)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "grading run completed", report)
}

func (h *GradingHandler) get(c *fiber.Ctx) error {
	report, err := h.service.Get(c.Context(), c.Params("uid"))
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "grading run not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "grading run retrieved", report)
}

func (h *GradingHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
