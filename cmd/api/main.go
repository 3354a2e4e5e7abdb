package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/casechain-api/internal/auth"
	"github.com/noah-isme/casechain-api/internal/config"
	"github.com/noah-isme/casechain-api/internal/database"
	"github.com/noah-isme/casechain-api/internal/events"
	"github.com/noah-isme/casechain-api/internal/handler"
	"github.com/noah-isme/casechain-api/internal/ledger"
	"github.com/noah-isme/casechain-api/internal/middleware"
	"github.com/noah-isme/casechain-api/internal/models"
	"github.com/noah-isme/casechain-api/internal/repository"
	"github.com/noah-isme/casechain-api/internal/reputation"
	"github.com/noah-isme/casechain-api/internal/router"
	"github.com/noah-isme/casechain-api/internal/service"
	"github.com/noah-isme/casechain-api/pkg/ai"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(&models.User{}, &models.ReputationAccount{}, &models.AnchoredSubmission{}, &models.RewardToken{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(startupCtx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	}

	var (
		ledgerClient ledger.Ledger
		evmLedger    *ledger.EVMLedger
	)
	switch cfg.LedgerBackend {
	case config.LedgerBackendEVM:
		evmLedger, err = ledger.NewEVMLedger(startupCtx, ledger.EVMConfig{
			RPCURL:          cfg.LedgerRPCURL,
			ContractAddress: cfg.LedgerContractAddress,
			SignerKey:       cfg.LedgerSignerKey,
			TxTimeout:       cfg.LedgerTxTimeout,
			ReadConcurrency: cfg.LedgerReadConcurrency,
			Logger:          logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to ledger")
		}
		defer evmLedger.Close()
		if err := evmLedger.CheckDeployed(startupCtx); err != nil {
			logger.Fatal().Err(err).Msg("registry contract unavailable")
		}
		ledgerClient = evmLedger
	default:
		ledgerClient = ledger.NewDatabaseLedger(db)
	}

	var reputationStore reputation.Store = reputation.NewDatabaseStore(db)
	if cfg.ReputationBackend == config.ReputationBackendLedger && evmLedger != nil {
		reputationStore = evmLedger
	}
	reputationStore = reputation.NewCachedStore(reputationStore, redisClient, cfg.ReputationCacheTTL, logger)

	evaluator, err := ai.NewOpenAIEvaluator(ai.OpenAIConfig{
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.OpenAIModel,
		BaseURL:   cfg.OpenAIBaseURL,
		MaxTokens: cfg.OpenAIMaxTokens,
		JSONMode:  cfg.OpenAIJSONMode,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create evaluator")
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	var publisher events.Publisher
	if redisClient != nil || natsConn != nil {
		publisher = events.NewBus(natsConn, redisClient, cfg.EventPrefix, logger)
	}

	userRepo := repository.NewUserRepository(db)

	authService := service.NewAuthService(userRepo, reputationStore, tokens, validate, logger)
	submissionService := service.NewSubmissionService(evaluator, ledgerClient, reputationStore, publisher, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.AllowOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		JWTMiddleware:     middleware.JWTProtected(authService),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	logger.Info().
		Str("address", cfg.HTTPAddress()).
		Str("ledger_backend", cfg.LedgerBackend).
		Str("reputation_backend", cfg.ReputationBackend).
		Msg("server started")

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
