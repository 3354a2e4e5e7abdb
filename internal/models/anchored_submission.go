package models

import "time"

// AnchoredSubmission is a ledger entry written by the database ledger backend.
// Validity is deliberately absent: readers recompute it from the scores.
type AnchoredSubmission struct {
	Sequence     uint64    `gorm:"primaryKey;autoIncrement:false" json:"sequence"`
	CaseID       uint64    `gorm:"not null;index" json:"case_id"`
	Author       string    `gorm:"size:128;not null;index" json:"author"`
	Clarity      uint8     `gorm:"not null" json:"clarity"`
	Plausibility uint8     `gorm:"not null" json:"plausibility"`
	Consistency  uint8     `gorm:"not null" json:"consistency"`
	Relevance    uint8     `gorm:"not null" json:"relevance"`
	IsSafe       bool      `gorm:"not null" json:"is_safe"`
	Flag         string    `gorm:"type:text" json:"flag"`
	Theory       string    `gorm:"type:text" json:"theory"`
	Summary      string    `gorm:"type:text" json:"summary"`
	Rank         string    `gorm:"size:16" json:"rank"`
	Timestamp    int64     `gorm:"not null" json:"timestamp"`
	TxDigest     string    `gorm:"size:80;uniqueIndex" json:"tx_digest"`
	CreatedAt    time.Time `json:"created_at"`
}

// RewardToken is an NFT minted by the database ledger backend.
type RewardToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CaseID    uint64    `gorm:"not null;index" json:"case_id"`
	Owner     string    `gorm:"size:128;not null;index" json:"owner"`
	Score     uint8     `gorm:"not null" json:"score"`
	Summary   string    `gorm:"type:text" json:"summary"`
	Rank      string    `gorm:"size:16" json:"rank"`
	Timestamp int64     `gorm:"not null" json:"timestamp"`
	TxDigest  string    `gorm:"size:80;uniqueIndex" json:"tx_digest"`
	CreatedAt time.Time `json:"created_at"`
}
