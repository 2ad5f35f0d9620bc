package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"royal-kart/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix     = "cart:"
	maxTxAttempts = 5
)

type snapshot struct {
	Lines []model.CartLine `json:"lines"`
}

// redisStore keeps each session's cart as a JSON snapshot. Updates use
// WATCH/MULTI so a concurrent write forces a reload and retry.
type redisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed cart store. Every write refreshes the
// key's expiry to ttl.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "cart-store").Logger(),
	}
}

func cartKey(session string) string {
	return keyPrefix + session
}

func (s *redisStore) read(ctx context.Context, cmd redis.Cmdable, key string) (*Cart, error) {
	data, err := cmd.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// Corrupt snapshot: start over with an empty cart.
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cart snapshot")
		return New(), nil
	}
	return FromLines(snap.Lines), nil
}

func (s *redisStore) Load(ctx context.Context, session string) (*Cart, error) {
	c, err := s.read(ctx, s.client, cartKey(session))
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", session).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}

func (s *redisStore) Update(ctx context.Context, session string, fn UpdateFunc) (*Cart, error) {
	key := cartKey(session)

	var (
		result *Cart
		fnErr  error
	)
	txf := func(tx *redis.Tx) error {
		c, err := s.read(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			fnErr = err
			return err
		}

		lines := c.Lines()
		data, err := json.Marshal(snapshot{Lines: lines})
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(lines) == 0 {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			result = c
		}
		return err
	}

	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		fnErr = nil
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if fnErr != nil {
			return nil, fnErr
		}
		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug().Str("session_id", session).Int("attempt", attempt).Msg("cart changed during update, retrying")
			continue
		}
		s.logger.Error().Err(err).Str("session_id", session).Msg("failed to update cart")
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	s.logger.Warn().Str("session_id", session).Msg("cart update gave up after repeated conflicts")
	return nil, ErrConflict
}

func (s *redisStore) Delete(ctx context.Context, session string) error {
	if err := s.client.Del(ctx, cartKey(session)).Err(); err != nil {
		s.logger.Error().Err(err).Str("session_id", session).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
