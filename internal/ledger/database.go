package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/casechain-api/internal/models"
	"github.com/noah-isme/casechain-api/pkg/ai"
)

// DatabaseLedger stores anchored submissions in the relational database. It is
// used for local development and tests in place of the chain.
type DatabaseLedger struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewDatabaseLedger constructs a gorm backed ledger.
func NewDatabaseLedger(db *gorm.DB) *DatabaseLedger {
	return &DatabaseLedger{db: db}
}

func (l *DatabaseLedger) Anchor(ctx context.Context, req AnchorRequest) (AnchorReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := models.AnchoredSubmission{
		CaseID:       req.CaseID,
		Author:       req.Author,
		Clarity:      uint8(req.Scores.Clarity),
		Plausibility: uint8(req.Scores.Plausibility),
		Consistency:  uint8(req.Scores.Consistency),
		Relevance:    uint8(req.Scores.Relevance),
		IsSafe:       req.IsSafe,
		Flag:         req.Flag,
		Theory:       req.Theory,
		Summary:      req.Summary,
		Rank:         req.Rank,
		Timestamp:    req.Timestamp,
		TxDigest:     newDigest(),
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AnchoredSubmission{}).Count(&count).Error; err != nil {
			return err
		}
		entry.Sequence = uint64(count)
		return tx.Create(&entry).Error
	})
	if err != nil {
		return AnchorReceipt{}, fmt.Errorf("%w: anchor submission: %v", ErrTransactionFailed, err)
	}

	return AnchorReceipt{ID: entry.Sequence, TxDigest: entry.TxDigest}, nil
}

func (l *DatabaseLedger) Mint(ctx context.Context, req MintRequest) (MintReceipt, error) {
	token := models.RewardToken{
		CaseID:    req.CaseID,
		Owner:     req.Author,
		Score:     uint8(req.Score),
		Summary:   req.Summary,
		Rank:      req.Rank,
		Timestamp: req.Timestamp,
		TxDigest:  newDigest(),
	}

	if err := l.db.WithContext(ctx).Create(&token).Error; err != nil {
		return MintReceipt{}, fmt.Errorf("%w: mint reward token: %v", ErrTransactionFailed, err)
	}
	return MintReceipt{TxDigest: token.TxDigest}, nil
}

func (l *DatabaseLedger) FetchByID(ctx context.Context, id uint64) (Record, error) {
	var entry models.AnchoredSubmission
	err := l.db.WithContext(ctx).First(&entry, "sequence = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return recordFromModel(entry), nil
}

func (l *DatabaseLedger) FetchAll(ctx context.Context) ([]Record, error) {
	var entries []models.AnchoredSubmission
	if err := l.db.WithContext(ctx).Order("sequence asc").Find(&entries).Error; err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, recordFromModel(entry))
	}
	return records, nil
}

func recordFromModel(entry models.AnchoredSubmission) Record {
	return Record{
		ID:     entry.Sequence,
		CaseID: entry.CaseID,
		Author: entry.Author,
		Scores: ai.SynopsisScores{
			Clarity:      int(entry.Clarity),
			Plausibility: int(entry.Plausibility),
			Consistency:  int(entry.Consistency),
			Relevance:    int(entry.Relevance),
		},
		IsSafe:    entry.IsSafe,
		Flag:      entry.Flag,
		Theory:    entry.Theory,
		Summary:   entry.Summary,
		Rank:      entry.Rank,
		Timestamp: entry.Timestamp,
	}
}

func newDigest() string {
	return "local-" + uuid.NewString()
}
