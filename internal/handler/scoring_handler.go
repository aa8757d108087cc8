package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bandwise/bandwise-go-api/internal/dto"
	"github.com/bandwise/bandwise-go-api/internal/service"
	"github.com/bandwise/bandwise-go-api/internal/utils"
	"github.com/bandwise/bandwise-go-api/pkg/ai"
)

// ScoringHandler manages the scoring endpoints.
type ScoringHandler struct {
	scoring service.ScoringService
	async   service.AsyncScoringService
	history service.ScoreHistoryService
	logger  zerolog.Logger
}

// NewScoringHandler builds a scoring handler instance. The async and history
// services may be nil when their backing infrastructure is not configured.
func NewScoringHandler(scoring service.ScoringService, async service.AsyncScoringService, history service.ScoreHistoryService, logger zerolog.Logger) *ScoringHandler {
	return &ScoringHandler{
		scoring: scoring,
		async:   async,
		history: history,
		logger:  logger.With().Str("component", "scoring_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ScoringHandler) Register(router fiber.Router) {
	router.Post("/score", h.score)
	router.Post("/score/batch", h.scoreBatch)
	router.Post("/score/async", h.scoreAsync)
	router.Get("/score/async/:id", h.asyncJob)
	router.Delete("/score/async/:id", h.cancelAsyncJob)
	router.Get("/providers", h.providers)
	router.Get("/stats", h.stats)
	router.Get("/history", h.scoreHistory)
}

func (h *ScoringHandler) score(c *fiber.Ctx) error {
	var payload dto.ScoringRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.scoring.Score(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission scored", response)
}

func (h *ScoringHandler) scoreBatch(c *fiber.Ctx) error {
	var payload dto.BatchScoringRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.scoring.ScoreBatch(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "batch scored", response)
}

func (h *ScoringHandler) scoreAsync(c *fiber.Ctx) error {
	if h.async == nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "async scoring is not configured")
	}

	var payload dto.ScoringRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	job, err := h.async.Enqueue(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "scoring job accepted", job)
}

func (h *ScoringHandler) asyncJob(c *fiber.Ctx) error {
	if h.async == nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "async scoring is not configured")
	}

	job, err := h.async.Job(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "job retrieved", job)
}

func (h *ScoringHandler) cancelAsyncJob(c *fiber.Ctx) error {
	if h.async == nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "async scoring is not configured")
	}

	job, err := h.async.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "job cancelled", job)
}

func (h *ScoringHandler) providers(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "providers retrieved", h.scoring.Providers())
}

func (h *ScoringHandler) stats(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "stats retrieved", h.scoring.Stats())
}

func (h *ScoringHandler) scoreHistory(c *fiber.Ctx) error {
	if h.history == nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "score history is not configured")
	}

	userID := strings.TrimSpace(c.Query("user_id"))
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	history, err := h.history.History(c.UserContext(), userID, limit, offset)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "history retrieved", history)
}

func (h *ScoringHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var providerErr *ai.ProviderError
	switch {
	case errors.Is(err, service.ErrEmptySubmission):
		return utils.SendError(c, fiber.StatusBadRequest, "submission text is empty")
	case errors.Is(err, service.ErrUserIDRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "user_id is required")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrJobNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "job not found")
	case errors.Is(err, service.ErrJobNotCancellable):
		return utils.SendError(c, fiber.StatusConflict, "job already finished")
	case errors.Is(err, service.ErrRateLimited):
		return utils.SendError(c, fiber.StatusTooManyRequests, "async scoring rate limit exceeded")
	case errors.Is(err, service.ErrQueueUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "async scoring queue unavailable")
	case errors.Is(err, ai.ErrNoProvider):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "no scoring provider available")
	case errors.As(err, &providerErr):
		requestLogger(h.logger, c).Error().Err(err).Str("provider", providerErr.Provider).Msg("provider call failed")
		return utils.SendError(c, fiber.StatusBadGateway, "scoring provider failed")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
