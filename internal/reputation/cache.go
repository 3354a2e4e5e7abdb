package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedStore fronts a slow store (typically the chain) with a redis read cache.
type CachedStore struct {
	next   Store
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedStore wraps next with a redis cache. A nil client disables caching.
func NewCachedStore(next Store, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedStore{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "reputation_cache").Logger(),
	}
}

func (s *CachedStore) Provision(ctx context.Context, wallet string) error {
	if err := s.next.Provision(ctx, wallet); err != nil {
		return err
	}
	s.invalidate(ctx, wallet)
	return nil
}

func (s *CachedStore) Apply(ctx context.Context, wallet string, points int, nftMinted bool) error {
	if err := s.next.Apply(ctx, wallet, points, nftMinted); err != nil {
		return err
	}
	s.invalidate(ctx, wallet)
	return nil
}

func (s *CachedStore) Stats(ctx context.Context, wallet string) (Account, error) {
	key := cacheKey(wallet)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			var account Account
			if unmarshalErr := json.Unmarshal([]byte(cached), &account); unmarshalErr == nil {
				s.logger.Debug().Str("wallet", wallet).Msg("reputation cache hit")
				return account, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read reputation cache")
		}
	}

	account, err := s.next.Stats(ctx, wallet)
	if err != nil {
		return Account{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(account)
		if err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store reputation cache")
			}
		}
	}

	return account, nil
}

func (s *CachedStore) invalidate(ctx context.Context, wallet string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(wallet)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("wallet", wallet).Msg("failed to invalidate reputation cache")
	}
}

func cacheKey(wallet string) string {
	return fmt.Sprintf("reputation:%s", wallet)
}
