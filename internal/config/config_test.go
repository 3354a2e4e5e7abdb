package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CASECHAIN_JWT_SECRET", "secret")
	t.Setenv("CASECHAIN_DATABASE_URL", "file:casechain.db")
	t.Setenv("CASECHAIN_OPENAI_API_KEY", "sk-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "CaseChain API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 120*time.Minute, cfg.JWTTTL)
	require.Equal(t, "gpt-4", cfg.OpenAIModel)
	require.Equal(t, 800, cfg.OpenAIMaxTokens)
	require.Equal(t, LedgerBackendDatabase, cfg.LedgerBackend)
	require.Equal(t, ReputationBackendDatabase, cfg.ReputationBackend)
	require.Equal(t, 2*time.Minute, cfg.LedgerTxTimeout)
	require.Equal(t, 10, cfg.SubmissionsPerMinute)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("CASECHAIN_JWT_SECRET", "")
	t.Setenv("CASECHAIN_DATABASE_URL", "file:casechain.db")
	t.Setenv("CASECHAIN_OPENAI_API_KEY", "sk-test")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadEVMLedgerRequiresConnectionSettings(t *testing.T) {
	setRequired(t)
	t.Setenv("CASECHAIN_LEDGER_BACKEND", "evm")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("CASECHAIN_LEDGER_RPC_URL", "http://localhost:8545")
	t.Setenv("CASECHAIN_LEDGER_CONTRACT_ADDRESS", "0x00000000000000000000000000000000000000aa")
	t.Setenv("CASECHAIN_LEDGER_SIGNER_KEY", "0x01")
	t.Setenv("CASECHAIN_REPUTATION_BACKEND", "ledger")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, LedgerBackendEVM, cfg.LedgerBackend)
	require.Equal(t, ReputationBackendLedger, cfg.ReputationBackend)
}

func TestLoadRejectsLedgerReputationWithoutEVM(t *testing.T) {
	setRequired(t)
	t.Setenv("CASECHAIN_REPUTATION_BACKEND", "ledger")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("CASECHAIN_JWT_TTL", "forever")

	_, err := Load()
	require.Error(t, err)
}
