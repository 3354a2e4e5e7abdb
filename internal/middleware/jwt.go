package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/casechain-api/internal/utils"
)

const walletLocalKey = "wallet_address"

// IdentityProvider maps a bearer credential to a wallet address.
type IdentityProvider interface {
	Authenticate(ctx context.Context, credential string) (string, error)
}

// JWTProtected rejects requests without a valid bearer token and binds the
// caller's wallet to the request. A nil identity rejects every request.
func JWTProtected(identity IdentityProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity == nil {
			return unauthorized(c, "authentication unavailable")
		}

		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return unauthorized(c, "authorization header missing")
		}

		scheme, token, found := strings.Cut(authorization, " ")
		if !found || !strings.EqualFold(scheme, "bearer") {
			return unauthorized(c, "invalid authorization header")
		}

		token = strings.TrimSpace(token)
		if token == "" {
			return unauthorized(c, "invalid token")
		}

		wallet, err := identity.Authenticate(c.UserContext(), token)
		if err != nil || wallet == "" {
			return unauthorized(c, "could not validate credentials")
		}

		c.Locals(walletLocalKey, wallet)
		return c.Next()
	}
}

// WalletFromContext returns the authenticated wallet bound by JWTProtected.
func WalletFromContext(c *fiber.Ctx) string {
	if value, ok := c.Locals(walletLocalKey).(string); ok {
		return value
	}
	return ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return utils.SendError(c, fiber.StatusUnauthorized, message)
}
