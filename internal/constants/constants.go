package constants

import "time"

const (
	DefaultLeaderboardAPIURL = "https://gb.hlorenzi.com/api/v1/graphql"
	BoardMatchHistory        = 100
	SubmissionWindow         = 100
	RatingUpdatesCacheTTL    = 24 * time.Hour
)

const (
	ExternalAPITimeout = 12 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MaxTableLength = 8 * 1024
)
