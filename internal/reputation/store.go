package reputation

import (
	"context"
	"errors"
)

// ErrAccountNotFound indicates the wallet has no provisioned reputation account.
var ErrAccountNotFound = errors.New("reputation account not found")

// ErrInvalidPoints indicates a non-positive point delta.
var ErrInvalidPoints = errors.New("reputation points must be positive")

// Account is the per-wallet reputation snapshot.
type Account struct {
	Wallet              string `json:"wallet"`
	ReputationPoints    int64  `json:"reputation_points"`
	NFTCount            int64  `json:"nft_count"`
	SubmissionsAccepted int64  `json:"submissions_accepted"`
}

// Store accumulates reputation per wallet. Counters only ever grow.
type Store interface {
	// Provision creates a zeroed account. Provisioning an existing account succeeds.
	Provision(ctx context.Context, wallet string) error
	// Apply adds points for one accepted submission.
	Apply(ctx context.Context, wallet string, points int, nftMinted bool) error
	Stats(ctx context.Context, wallet string) (Account, error)
}
