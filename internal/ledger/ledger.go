package ledger

import (
	"context"
	"errors"

	"github.com/noah-isme/casechain-api/pkg/ai"
)

// ErrNotFound indicates no record exists at the requested index.
var ErrNotFound = errors.New("ledger record not found")

// ErrTransactionFailed indicates the ledger rejected or reverted a write.
var ErrTransactionFailed = errors.New("ledger transaction failed")

// ErrInvalidAuthor indicates the author cannot be represented on the ledger.
var ErrInvalidAuthor = errors.New("invalid author address")

// AnchorRequest is an accepted submission to be recorded.
type AnchorRequest struct {
	CaseID    uint64
	Author    string
	Scores    ai.SynopsisScores
	IsSafe    bool
	Flag      string
	Theory    string
	Summary   string
	Rank      string
	Timestamp int64
}

// AnchorReceipt identifies an anchored submission.
type AnchorReceipt struct {
	ID       uint64
	TxDigest string
}

// MintRequest describes a reward token for an outstanding submission.
type MintRequest struct {
	CaseID    uint64
	Author    string
	Score     int
	Summary   string
	Rank      string
	Timestamp int64
}

// MintReceipt identifies a mint transaction.
type MintReceipt struct {
	TxDigest string
}

// Record is an anchored submission read back from the ledger. It carries the raw
// scores only; validity is never stored.
type Record struct {
	ID        uint64
	CaseID    uint64
	Author    string
	Scores    ai.SynopsisScores
	IsSafe    bool
	Flag      string
	Theory    string
	Summary   string
	Rank      string
	Timestamp int64
}

// Ledger durably anchors accepted submissions. Record ids are assigned by the
// ledger as a 0-based contiguous sequence.
type Ledger interface {
	Anchor(ctx context.Context, req AnchorRequest) (AnchorReceipt, error)
	Mint(ctx context.Context, req MintRequest) (MintReceipt, error)
	FetchByID(ctx context.Context, id uint64) (Record, error)
	FetchAll(ctx context.Context) ([]Record, error)
}
