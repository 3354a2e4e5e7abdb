package models

import "time"

// ReputationAccount accumulates reputation for a wallet when the database store is used.
type ReputationAccount struct {
	WalletAddress       string    `gorm:"primaryKey;size:128" json:"wallet"`
	ReputationPoints    int64     `gorm:"not null;default:0" json:"reputation_points"`
	NFTCount            int64     `gorm:"column:nft_count;not null;default:0" json:"nft_count"`
	SubmissionsAccepted int64     `gorm:"not null;default:0" json:"submissions_accepted"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
