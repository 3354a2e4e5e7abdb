package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/casechain-api/internal/config"
	"github.com/noah-isme/casechain-api/internal/handler"
	"github.com/noah-isme/casechain-api/internal/middleware"
	"github.com/noah-isme/casechain-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	SubmissionHandler *handler.SubmissionHandler
	JWTMiddleware     fiber.Handler
	// SubmitLimiter overrides the per-wallet limiter on evaluation endpoints.
	SubmitLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(nil)
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api, jwtMiddleware)
	}

	if deps.SubmissionHandler != nil {
		limiter := deps.SubmitLimiter
		if limiter == nil {
			limiter = middleware.RateLimit("submissions", cfg.SubmissionsPerMinute, time.Minute)
		}
		deps.SubmissionHandler.Register(api.Group("/submissions", jwtMiddleware), limiter)
	}
}
