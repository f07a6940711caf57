package fx

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"ctrnf-scores/internal/cache"
	"ctrnf-scores/internal/metrics"
	"ctrnf-scores/internal/server"
	"ctrnf-scores/internal/service"
)

func TestModuleGraph(t *testing.T) {
	err := fx.ValidateApp(
		Module,
		fx.Invoke(func(*server.ScoresServer, *sql.DB, *cache.RedisCache, *metrics.Metrics) {}),
		fx.Invoke(func(service.SubmissionFeed, service.SubmissionStore, service.LeaderboardClient) {}),
	)
	require.NoError(t, err)
}
