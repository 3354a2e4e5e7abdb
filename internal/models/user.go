package models

import "time"

// User is the local identity record for a wallet.
type User struct {
	WalletAddress     string    `gorm:"primaryKey;size:128" json:"wallet_address"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	ReputationCreated bool      `gorm:"not null;default:false" json:"reputation_created"`
}
