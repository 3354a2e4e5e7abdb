package dto

import (
	"time"

	"github.com/noah-isme/casechain-api/internal/models"
)

// WalletAuthRequest is the payload for wallet sign-in.
type WalletAuthRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,startswith=0x,max=128"`
}

// TokenResponse is returned after a successful wallet sign-in.
type TokenResponse struct {
	AccessToken   string `json:"access_token"`
	TokenType     string `json:"token_type"`
	WalletAddress string `json:"wallet_address"`
	ExpiresAt     int64  `json:"expires_at"`
}

// UserResponse describes the authenticated wallet user.
type UserResponse struct {
	WalletAddress     string    `json:"wallet_address"`
	CreatedAt         time.Time `json:"created_at"`
	ReputationCreated bool      `json:"reputation_created"`
}

// NewUserResponse maps a user model to its response.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		WalletAddress:     user.WalletAddress,
		CreatedAt:         user.CreatedAt,
		ReputationCreated: user.ReputationCreated,
	}
}
