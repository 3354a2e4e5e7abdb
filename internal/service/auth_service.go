package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/casechain-api/internal/auth"
	"github.com/noah-isme/casechain-api/internal/dto"
	"github.com/noah-isme/casechain-api/internal/models"
	"github.com/noah-isme/casechain-api/internal/repository"
	"github.com/noah-isme/casechain-api/internal/reputation"
)

// ErrReputationNotFound indicates the wallet has no reputation account yet.
var ErrReputationNotFound = errors.New("reputation not found")

// AuthService signs wallets in and resolves their identity.
type AuthService interface {
	WalletAuth(ctx context.Context, payload dto.WalletAuthRequest) (dto.TokenResponse, error)
	Authenticate(ctx context.Context, credential string) (string, error)
	Me(ctx context.Context, wallet string) (dto.UserResponse, error)
	Reputation(ctx context.Context, wallet string) (reputation.Account, error)
}

type authService struct {
	users        repository.UserRepository
	reputation   reputation.Store
	tokens       *auth.Manager
	validator    *validator.Validate
	logger       zerolog.Logger
	provisioning singleflight.Group
}

// NewAuthService constructs the wallet authentication service.
func NewAuthService(users repository.UserRepository, store reputation.Store, tokens *auth.Manager, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:      users,
		reputation: store,
		tokens:     tokens,
		validator:  validate,
		logger:     logger.With().Str("component", "auth_service").Logger(),
	}
}

// WalletAuth registers the wallet on first sight, provisions its reputation
// account once and issues an access token. Provisioning failures do not block
// sign-in; the next sign-in retries.
func (s *authService) WalletAuth(ctx context.Context, payload dto.WalletAuthRequest) (dto.TokenResponse, error) {
	payload.WalletAddress = strings.TrimSpace(payload.WalletAddress)
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}

	user, err := s.users.FindOrCreate(ctx, payload.WalletAddress)
	if err != nil {
		return dto.TokenResponse{}, fmt.Errorf("load user: %w", err)
	}

	if !user.ReputationCreated {
		s.provisionReputation(ctx, user)
	}

	token, err := s.tokens.Issue(user.WalletAddress)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	return dto.TokenResponse{
		AccessToken:   token.AccessToken,
		TokenType:     auth.TokenTypeBearer,
		WalletAddress: user.WalletAddress,
		ExpiresAt:     token.ExpiresAt.Unix(),
	}, nil
}

func (s *authService) provisionReputation(ctx context.Context, user models.User) {
	wallet := user.WalletAddress
	_, err, shared := s.provisioning.Do(wallet, func() (interface{}, error) {
		if err := s.reputation.Provision(ctx, wallet); err != nil {
			return nil, err
		}
		return s.users.MarkReputationCreated(ctx, wallet)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("wallet", wallet).Msg("reputation provisioning failed")
		return
	}
	s.logger.Info().Str("wallet", wallet).Bool("shared", shared).Msg("reputation provisioned")
}

func (s *authService) Authenticate(ctx context.Context, credential string) (string, error) {
	wallet, err := s.tokens.Verify(credential)
	if err != nil {
		return "", err
	}
	return wallet, nil
}

func (s *authService) Me(ctx context.Context, wallet string) (dto.UserResponse, error) {
	user, err := s.users.FindOrCreate(ctx, wallet)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) Reputation(ctx context.Context, wallet string) (reputation.Account, error) {
	account, err := s.reputation.Stats(ctx, wallet)
	if err != nil {
		if errors.Is(err, reputation.ErrAccountNotFound) {
			return reputation.Account{}, ErrReputationNotFound
		}
		return reputation.Account{}, err
	}
	return account, nil
}
