package reputation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/casechain-api/internal/models"
)

// DatabaseStore keeps reputation accounts in the relational database.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore constructs a gorm backed reputation store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) Provision(ctx context.Context, wallet string) error {
	account := models.ReputationAccount{WalletAddress: wallet}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&account).Error
	if err != nil {
		return fmt.Errorf("provision reputation account: %w", err)
	}
	return nil
}

func (s *DatabaseStore) Apply(ctx context.Context, wallet string, points int, nftMinted bool) error {
	if points <= 0 {
		return ErrInvalidPoints
	}

	nftDelta := 0
	if nftMinted {
		nftDelta = 1
	}

	result := s.db.WithContext(ctx).
		Model(&models.ReputationAccount{}).
		Where("wallet_address = ?", wallet).
		Updates(map[string]interface{}{
			"reputation_points":    gorm.Expr("reputation_points + ?", points),
			"submissions_accepted": gorm.Expr("submissions_accepted + 1"),
			"nft_count":            gorm.Expr("nft_count + ?", nftDelta),
		})
	if result.Error != nil {
		return fmt.Errorf("apply reputation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *DatabaseStore) Stats(ctx context.Context, wallet string) (Account, error) {
	var account models.ReputationAccount
	err := s.db.WithContext(ctx).First(&account, "wallet_address = ?", wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}

	return Account{
		Wallet:              account.WalletAddress,
		ReputationPoints:    account.ReputationPoints,
		NFTCount:            account.NFTCount,
		SubmissionsAccepted: account.SubmissionsAccepted,
	}, nil
}
