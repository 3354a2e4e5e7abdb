package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/casechain-api/internal/dto"
	"github.com/noah-isme/casechain-api/internal/middleware"
	"github.com/noah-isme/casechain-api/internal/service"
	"github.com/noah-isme/casechain-api/internal/utils"
)

// AuthHandler exposes wallet sign-in and identity endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the auth routes. protected guards the identity routes.
func (h *AuthHandler) Register(router fiber.Router, protected fiber.Handler) {
	router.Post("/wallet/auth", h.walletAuth)
	router.Get("/me", protected, h.me)
	router.Get("/me/reputation", protected, h.reputation)
}

func (h *AuthHandler) walletAuth(c *fiber.Ctx) error {
	var payload dto.WalletAuthRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	token, err := h.service.WalletAuth(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "wallet authenticated", token)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(c.UserContext(), middleware.WalletFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *AuthHandler) reputation(c *fiber.Ctx) error {
	account, err := h.service.Reputation(c.UserContext(), middleware.WalletFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "reputation retrieved", account)
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrReputationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "reputation not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("auth request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
