package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/casechain-api/internal/config"
	"github.com/noah-isme/casechain-api/internal/utils"
)

// HealthResponse reports liveness and the configured backends.
type HealthResponse struct {
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	Service           string    `json:"service"`
	Environment       string    `json:"environment"`
	LedgerBackend     string    `json:"ledger_backend"`
	ReputationBackend string    `json:"reputation_backend"`
}

// HealthCheck returns a liveness handler. It does not probe the ledger.
func HealthCheck(cfg config.Config) fiber.Handler {
	payload := HealthResponse{
		Status:            "ok",
		Service:           cfg.AppName,
		Environment:       cfg.AppEnv,
		LedgerBackend:     cfg.LedgerBackend,
		ReputationBackend: cfg.ReputationBackend,
	}

	return func(c *fiber.Ctx) error {
		response := payload
		response.Timestamp = time.Now().UTC()
		return utils.SendSuccess(c, "service healthy", response)
	}
}
