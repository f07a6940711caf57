package fx

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"ctrnf-scores/internal/api"
	"ctrnf-scores/internal/cache"
	"ctrnf-scores/internal/config"
	"ctrnf-scores/internal/database"
	"ctrnf-scores/internal/logger"
	"ctrnf-scores/internal/metrics"
	"ctrnf-scores/internal/repository"
	"ctrnf-scores/internal/server"
	"ctrnf-scores/internal/service"
)

const tracerName = "ctrnf-scores"

func ProvideTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// ProvideLeaderboard puts the rating-updates cache in front of the client when
// redis is configured.
func ProvideLeaderboard(client *api.LeaderboardClient, rc *cache.RedisCache, cfg *config.Config, logger zerolog.Logger) service.LeaderboardClient {
	if rc == nil {
		return client
	}
	return cache.NewRatingUpdatesCache(client, rc, cfg.RatingUpdatesCacheTTL, logger)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	fx.Provide(database.New),
	fx.Provide(cache.New),
	fx.Provide(ProvideTracer),
	// repos
	fx.Provide(fx.Annotate(
		repository.NewSubmissionRepository,
		fx.As(new(service.SubmissionFeed)),
		fx.As(new(service.SubmissionStore)),
	)),
	// api client
	fx.Provide(api.NewLeaderboardClient),
	fx.Provide(ProvideLeaderboard),
	// svc
	fx.Provide(service.NewResolutionService),
	fx.Provide(service.NewSubmissionService),
	// server
	fx.Provide(server.NewScoresServer),
)
