package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/casechain-api/internal/models"
	"github.com/noah-isme/casechain-api/pkg/ai"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AnchoredSubmission{}, &models.RewardToken{}))
	return db
}

func sampleAnchor(caseID uint64, author string) AnchorRequest {
	return AnchorRequest{
		CaseID:    caseID,
		Author:    author,
		Scores:    ai.SynopsisScores{Clarity: 9, Plausibility: 8, Consistency: 7, Relevance: 9},
		IsSafe:    true,
		Theory:    "The butler left through the garden.",
		Summary:   "Coherent timeline",
		Rank:      "Silver",
		Timestamp: 1700000000,
	}
}

func TestDatabaseLedgerAnchorAssignsSequentialIDs(t *testing.T) {
	ledger := NewDatabaseLedger(openTestDB(t))
	ctx := context.Background()

	first, err := ledger.Anchor(ctx, sampleAnchor(1, "0xa"))
	require.NoError(t, err)
	second, err := ledger.Anchor(ctx, sampleAnchor(2, "0xb"))
	require.NoError(t, err)

	require.Equal(t, uint64(0), first.ID)
	require.Equal(t, uint64(1), second.ID)
	require.NotEmpty(t, first.TxDigest)
	require.NotEqual(t, first.TxDigest, second.TxDigest)

	record, err := ledger.FetchByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(2), record.CaseID)
	require.Equal(t, "0xb", record.Author)
	require.Equal(t, 33, record.Scores.Total())
	require.Equal(t, "Silver", record.Rank)
	require.Equal(t, int64(1700000000), record.Timestamp)
}

func TestDatabaseLedgerConcurrentAnchors(t *testing.T) {
	ledger := NewDatabaseLedger(openTestDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(caseID uint64) {
			defer wg.Done()
			_, err := ledger.Anchor(ctx, sampleAnchor(caseID, "0xa"))
			errs <- err
		}(uint64(i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	records, err := ledger.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, record := range records {
		require.Equal(t, uint64(i), record.ID)
	}
}

func TestDatabaseLedgerFetchByIDNotFound(t *testing.T) {
	ledger := NewDatabaseLedger(openTestDB(t))

	_, err := ledger.FetchByID(context.Background(), 0)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestDatabaseLedgerFetchAllEmpty(t *testing.T) {
	ledger := NewDatabaseLedger(openTestDB(t))

	records, err := ledger.FetchAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestDatabaseLedgerMint(t *testing.T) {
	db := openTestDB(t)
	ledger := NewDatabaseLedger(db)

	receipt, err := ledger.Mint(context.Background(), MintRequest{
		CaseID:    3,
		Author:    "0xa",
		Score:     38,
		Summary:   "Outstanding",
		Rank:      "Gold",
		Timestamp: 1700000000,
	})
	require.NoError(t, err)
	require.NotEmpty(t, receipt.TxDigest)

	var token models.RewardToken
	require.NoError(t, db.First(&token, "tx_digest = ?", receipt.TxDigest).Error)
	require.Equal(t, "0xa", token.Owner)
	require.Equal(t, uint8(38), token.Score)
}
