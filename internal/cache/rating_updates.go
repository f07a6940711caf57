package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"ctrnf-scores/internal/domain"
)

var ErrMiss = errors.New("cache miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Leaderboard is the remote API the cache sits in front of.
type Leaderboard interface {
	GetBoard(ctx context.Context, id string) (*domain.Board, error)
	GetMatchRatingUpdates(ctx context.Context, matchID string) ([]domain.RatingUpdate, error)
}

// RatingUpdatesCache keeps the rating updates of scored matches, which never
// change once a match is on the board. Boards always go to the remote.
type RatingUpdatesCache struct {
	next   Leaderboard
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRatingUpdatesCache(next Leaderboard, store Store, ttl time.Duration, logger zerolog.Logger) *RatingUpdatesCache {
	return &RatingUpdatesCache{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "rating_updates_cache").Logger(),
	}
}

func (c *RatingUpdatesCache) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	return c.next.GetBoard(ctx, id)
}

// GetMatchRatingUpdates serves from the store when possible. Store failures are
// logged and fall through to the remote.
func (c *RatingUpdatesCache) GetMatchRatingUpdates(ctx context.Context, matchID string) ([]domain.RatingUpdate, error) {
	key := "rating_updates:" + matchID

	b, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var updates []domain.RatingUpdate
		if err := json.Unmarshal(b, &updates); err == nil {
			c.logger.Debug().Str("match_id", matchID).Msg("rating updates cache hit")
			return updates, nil
		}
		c.logger.Warn().Str("match_id", matchID).Msg("discarding unreadable cached rating updates")
	case !errors.Is(err, ErrMiss):
		c.logger.Warn().Err(err).Str("match_id", matchID).Msg("rating updates cache read failed")
	}

	updates, err := c.next.GetMatchRatingUpdates(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(updates); err == nil {
		if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
			c.logger.Warn().Err(err).Str("match_id", matchID).Msg("rating updates cache write failed")
		}
	}
	return updates, nil
}
