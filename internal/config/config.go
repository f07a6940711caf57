package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"ctrnf-scores/internal/constants"
)

type Config struct {
	LeaderboardAPIURL     string
	DBPath                string
	ServerPort            string
	LogLevel              string
	LogFormat             string
	RedisURL              string
	RatingUpdatesCacheTTL time.Duration
	SubmissionWindow      int
	APIRateLimit          float64
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		LeaderboardAPIURL: getEnv("LEADERBOARD_API_URL", constants.DefaultLeaderboardAPIURL),
		DBPath:            getEnv("DB_PATH", "scores.db"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		RedisURL:          getEnv("REDIS_URL", ""),
	}

	var err error
	if cfg.RatingUpdatesCacheTTL, err = time.ParseDuration(getEnv("RATING_UPDATES_CACHE_TTL", constants.RatingUpdatesCacheTTL.String())); err != nil {
		return nil, fmt.Errorf("invalid RATING_UPDATES_CACHE_TTL: %w", err)
	}
	if cfg.SubmissionWindow, err = strconv.Atoi(getEnv("SUBMISSION_WINDOW", strconv.Itoa(constants.SubmissionWindow))); err != nil {
		return nil, fmt.Errorf("invalid SUBMISSION_WINDOW: %w", err)
	}
	if cfg.APIRateLimit, err = strconv.ParseFloat(getEnv("API_RATE_LIMIT", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid API_RATE_LIMIT: %w", err)
	}

	if cfg.LeaderboardAPIURL == "" {
		return nil, fmt.Errorf("LEADERBOARD_API_URL is required")
	}
	if cfg.SubmissionWindow <= 0 {
		return nil, fmt.Errorf("SUBMISSION_WINDOW must be positive, got %d", cfg.SubmissionWindow)
	}

	logger.Info().
		Str("leaderboard_api_url", cfg.LeaderboardAPIURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("redis", cfg.RedisURL != "").
		Dur("rating_updates_cache_ttl", cfg.RatingUpdatesCacheTTL).
		Int("submission_window", cfg.SubmissionWindow).
		Float64("api_rate_limit", cfg.APIRateLimit).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
