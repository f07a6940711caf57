package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrnf-scores/internal/domain"
)

type memoryStore struct {
	values map[string][]byte
	ttls   map[string]time.Duration
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.values[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.values[key] = value
	s.ttls[key] = ttl
	return nil
}

type countingLeaderboard struct {
	boards  int
	updates int
	err     error
}

func (l *countingLeaderboard) GetBoard(context.Context, string) (*domain.Board, error) {
	l.boards++
	return &domain.Board{ID: domain.BoardSolos}, nil
}

func (l *countingLeaderboard) GetMatchRatingUpdates(_ context.Context, matchID string) ([]domain.RatingUpdate, error) {
	l.updates++
	if l.err != nil {
		return nil, l.err
	}
	return []domain.RatingUpdate{{Name: "Alice", RatingBefore: 1000, RatingAfter: 1016, RankingAfter: 2}}, nil
}

func TestRatingUpdatesCached(t *testing.T) {
	remote := &countingLeaderboard{}
	store := newMemoryStore()
	c := NewRatingUpdatesCache(remote, store, time.Hour, zerolog.Nop())
	ctx := context.Background()

	first, err := c.GetMatchRatingUpdates(ctx, "m1")
	require.NoError(t, err)
	second, err := c.GetMatchRatingUpdates(ctx, "m1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, remote.updates)
	assert.Equal(t, time.Hour, store.ttls["rating_updates:m1"])

	_, err = c.GetBoard(ctx, domain.BoardSolos)
	require.NoError(t, err)
	_, err = c.GetBoard(ctx, domain.BoardSolos)
	require.NoError(t, err)
	assert.Equal(t, 2, remote.boards)
}

func TestRatingUpdatesStoreFailureFallsThrough(t *testing.T) {
	remote := &countingLeaderboard{}
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	c := NewRatingUpdatesCache(remote, store, time.Hour, zerolog.Nop())

	updates, err := c.GetMatchRatingUpdates(context.Background(), "m1")
	require.NoError(t, err)
	assert.Len(t, updates, 1)
	assert.Equal(t, 1, remote.updates)
}

func TestRatingUpdatesRemoteErrorNotCached(t *testing.T) {
	remote := &countingLeaderboard{err: domain.ErrRemoteUnavailable}
	store := newMemoryStore()
	c := NewRatingUpdatesCache(remote, store, time.Hour, zerolog.Nop())

	_, err := c.GetMatchRatingUpdates(context.Background(), "m1")
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Empty(t, store.values)
}

func TestRatingUpdatesCorruptEntryRefetched(t *testing.T) {
	remote := &countingLeaderboard{}
	store := newMemoryStore()
	store.values["rating_updates:m1"] = []byte("{")
	c := NewRatingUpdatesCache(remote, store, time.Hour, zerolog.Nop())

	updates, err := c.GetMatchRatingUpdates(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", updates[0].Name)
	assert.Equal(t, 1, remote.updates)
}
