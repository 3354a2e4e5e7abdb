package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Ledger backends.
const (
	LedgerBackendDatabase = "database"
	LedgerBackendEVM      = "evm"
)

// Reputation backends.
const (
	ReputationBackendDatabase = "database"
	ReputationBackendLedger   = "ledger"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName      string
	AppEnv       string
	AppPort      string
	AllowOrigins string
	LogLevel     string

	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string
	NATSURL        string
	EventPrefix    string

	JWTSecret string
	JWTTTL    time.Duration

	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	OpenAIMaxTokens int
	OpenAIJSONMode  bool

	LedgerBackend         string
	LedgerRPCURL          string
	LedgerContractAddress string
	LedgerSignerKey       string
	LedgerTxTimeout       time.Duration
	LedgerReadConcurrency int

	ReputationBackend  string
	ReputationCacheTTL time.Duration

	SubmissionsPerMinute int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CASECHAIN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CaseChain API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.allow_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("events.prefix", "casechain")
	v.SetDefault("jwt.ttl", "120m")
	v.SetDefault("openai.model", "gpt-4")
	v.SetDefault("openai.max_tokens", 800)
	v.SetDefault("openai.json_mode", false)
	v.SetDefault("ledger.backend", LedgerBackendDatabase)
	v.SetDefault("ledger.tx_timeout", "2m")
	v.SetDefault("ledger.read_concurrency", 8)
	v.SetDefault("reputation.backend", ReputationBackendDatabase)
	v.SetDefault("reputation.cache_ttl", "1m")
	v.SetDefault("ratelimit.submissions_per_minute", 10)

	jwtTTL, err := parseDuration(v, "jwt.ttl")
	if err != nil {
		return Config{}, err
	}
	txTimeout, err := parseDuration(v, "ledger.tx_timeout")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v, "reputation.cache_ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:               v.GetString("app.name"),
		AppEnv:                v.GetString("app.env"),
		AppPort:               v.GetString("app.port"),
		AllowOrigins:          v.GetString("app.allow_origins"),
		LogLevel:              strings.ToLower(v.GetString("log.level")),
		DatabaseDriver:        strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:           v.GetString("database.url"),
		RedisURL:              v.GetString("redis.url"),
		NATSURL:               v.GetString("nats.url"),
		EventPrefix:           v.GetString("events.prefix"),
		JWTSecret:             v.GetString("jwt.secret"),
		JWTTTL:                jwtTTL,
		OpenAIAPIKey:          v.GetString("openai.api_key"),
		OpenAIModel:           v.GetString("openai.model"),
		OpenAIBaseURL:         v.GetString("openai.base_url"),
		OpenAIMaxTokens:       v.GetInt("openai.max_tokens"),
		OpenAIJSONMode:        v.GetBool("openai.json_mode"),
		LedgerBackend:         strings.ToLower(v.GetString("ledger.backend")),
		LedgerRPCURL:          v.GetString("ledger.rpc_url"),
		LedgerContractAddress: v.GetString("ledger.contract_address"),
		LedgerSignerKey:       v.GetString("ledger.signer_key"),
		LedgerTxTimeout:       txTimeout,
		LedgerReadConcurrency: v.GetInt("ledger.read_concurrency"),
		ReputationBackend:     strings.ToLower(v.GetString("reputation.backend")),
		ReputationCacheTTL:    cacheTTL,
		SubmissionsPerMinute:  v.GetInt("ratelimit.submissions_per_minute"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must be provided")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database url must be provided")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("openai api key must be provided")
	}

	switch c.LedgerBackend {
	case LedgerBackendDatabase:
	case LedgerBackendEVM:
		if c.LedgerRPCURL == "" || c.LedgerContractAddress == "" || c.LedgerSignerKey == "" {
			return fmt.Errorf("evm ledger requires rpc url, contract address and signer key")
		}
	default:
		return fmt.Errorf("unsupported ledger backend %q", c.LedgerBackend)
	}

	switch c.ReputationBackend {
	case ReputationBackendDatabase:
	case ReputationBackendLedger:
		if c.LedgerBackend != LedgerBackendEVM {
			return fmt.Errorf("ledger reputation backend requires the evm ledger")
		}
	default:
		return fmt.Errorf("unsupported reputation backend %q", c.ReputationBackend)
	}

	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	value, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
