package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/casechain-api/internal/dto"
	"github.com/noah-isme/casechain-api/internal/middleware"
	"github.com/noah-isme/casechain-api/internal/service"
	"github.com/noah-isme/casechain-api/internal/utils"
	"github.com/noah-isme/casechain-api/pkg/ai"
)

// SubmissionHandler manages theory submission endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. submitLimiter
// guards the evaluation endpoints and may be nil.
func (h *SubmissionHandler) Register(router fiber.Router, submitLimiter fiber.Handler) {
	if submitLimiter == nil {
		submitLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	router.Get("", h.list)
	router.Get("/case/:caseId", h.listByCase)
	router.Get("/author/:author", h.listByAuthor)
	router.Get("/:id", h.get)
	router.Post("/synopsis", submitLimiter, h.submitSynopsis)
	router.Post("/:category", submitLimiter, h.submitAdvisory)
}

func (h *SubmissionHandler) submitSynopsis(c *fiber.Ctx) error {
	var payload dto.SubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.service.SubmitSynopsis(c.UserContext(), middleware.WalletFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	if !record.IsValid {
		return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "synopsis evaluated but not accepted", record)
	}
	return utils.SendSuccess(c, "synopsis accepted", record)
}

func (h *SubmissionHandler) submitAdvisory(c *fiber.Ctx) error {
	category, err := ai.ParseCategory(c.Params("category"))
	if err != nil || !category.IsAdvisory() {
		return utils.SendError(c, fiber.StatusNotFound, "unknown analysis category")
	}

	var payload dto.SubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.SubmitAdvisory(c.UserContext(), middleware.WalletFromContext(c), category, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, string(category)+" analysis completed", result)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUint64Param(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	view, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submission retrieved", view)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	return h.respondList(c, dto.SubmissionFilter{})
}

func (h *SubmissionHandler) listByCase(c *fiber.Ctx) error {
	caseID, err := parseUint64Param(c, "caseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	return h.respondList(c, dto.SubmissionFilter{CaseID: &caseID})
}

// listByAuthor accepts "me" as an alias for the caller's wallet.
func (h *SubmissionHandler) listByAuthor(c *fiber.Ctx) error {
	author := strings.TrimSpace(c.Params("author"))
	if strings.EqualFold(author, "me") {
		author = middleware.WalletFromContext(c)
	}
	if author == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid author")
	}
	return h.respondList(c, dto.SubmissionFilter{Author: author})
}

func (h *SubmissionHandler) respondList(c *fiber.Ctx, filter dto.SubmissionFilter) error {
	views, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.OK(c, views, "submissions retrieved", fiber.Map{"count": len(views)})
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrUnknownCategory):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown analysis category")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "no submissions found")
	case errors.Is(err, ai.ErrEvaluation):
		requestLogger(h.logger, c).Error().Err(err).Msg("evaluation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "evaluation failed")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
