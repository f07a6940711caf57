package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrnf-scores/internal/constants"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"LEADERBOARD_API_URL", "DB_PATH", "SERVER_PORT", "REDIS_URL", "RATING_UPDATES_CACHE_TTL", "SUBMISSION_WINDOW", "API_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultLeaderboardAPIURL, cfg.LeaderboardAPIURL)
	assert.Equal(t, "scores.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.RatingUpdatesCacheTTL)
	assert.Equal(t, 100, cfg.SubmissionWindow)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEADERBOARD_API_URL", "http://localhost:9000/graphql")
	t.Setenv("RATING_UPDATES_CACHE_TTL", "90m")
	t.Setenv("SUBMISSION_WINDOW", "25")
	t.Setenv("API_RATE_LIMIT", "2.5")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/graphql", cfg.LeaderboardAPIURL)
	assert.Equal(t, 90*time.Minute, cfg.RatingUpdatesCacheTTL)
	assert.Equal(t, 25, cfg.SubmissionWindow)
	assert.Equal(t, 2.5, cfg.APIRateLimit)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUBMISSION_WINDOW", "lots")
	_, err := Load(zerolog.Nop())
	assert.Error(t, err)

	t.Setenv("SUBMISSION_WINDOW", "-1")
	_, err = Load(zerolog.Nop())
	assert.Error(t, err)
}
