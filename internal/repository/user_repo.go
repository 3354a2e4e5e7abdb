package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/casechain-api/internal/models"
)

// UserRepository provides access to wallet users.
type UserRepository interface {
	FindOrCreate(ctx context.Context, wallet string) (models.User, error)
	GetByWallet(ctx context.Context, wallet string) (models.User, error)
	MarkReputationCreated(ctx context.Context, wallet string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindOrCreate inserts the wallet on first sight. A concurrent insert of the
// same wallet is treated as success.
func (r *userRepository) FindOrCreate(ctx context.Context, wallet string) (models.User, error) {
	user := models.User{WalletAddress: wallet, CreatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "wallet_address"}}, DoNothing: true}).
		Create(&user).Error
	if err != nil {
		return models.User{}, err
	}

	return r.GetByWallet(ctx, wallet)
}

func (r *userRepository) GetByWallet(ctx context.Context, wallet string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "wallet_address = ?", wallet).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// MarkReputationCreated flips the flag once. It reports whether this call
// performed the flip.
func (r *userRepository) MarkReputationCreated(ctx context.Context, wallet string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("wallet_address = ? AND reputation_created = ?", wallet, false).
		Update("reputation_created", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
