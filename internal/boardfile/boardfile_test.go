package boardfile

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"ctrnf-scores/internal/domain"
	"ctrnf-scores/internal/metrics"
	"ctrnf-scores/internal/service"
)

const lobby43 = `Lobby #43 - Duos
Bandicoots
Crash 12|12|12
Coco 12|12|12
Villains
Cortex 10|10|10
Tiny 10|10|10`

func TestLoad(t *testing.T) {
	f, err := Load("testdata/teams.yaml")
	require.NoError(t, err)

	board, err := f.GetBoard(context.Background(), domain.BoardTeams)
	require.NoError(t, err)
	assert.Equal(t, "Coco", board.Players[0].Name)
	assert.Equal(t, 1, *board.Players[0].Ranking)
	assert.Equal(t, 4, *board.Players[3].Ranking)

	settings, ok := board.RatingSettings()
	require.True(t, ok)
	assert.Equal(t, domain.SchemeMMR, settings.Scheme)
	assert.True(t, settings.AverageByTeam)

	latest, ok := board.LatestMatch()
	require.True(t, ok)
	assert.Equal(t, "m41", latest.ID)
	assert.Equal(t, domain.RaceItemsDuos, latest.LobbyType)

	_, err = f.GetBoard(context.Background(), domain.BoardSolos)
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestFixtureResolves(t *testing.T) {
	f, err := Load("testdata/teams.yaml")
	require.NoError(t, err)
	s := service.NewResolutionService(f, f, metrics.New(), noop.NewTracerProvider().Tracer("test"), zerolog.Nop())

	scored, err := s.Resolve(context.Background(), "Lobby #41 - Duos\nBandicoots\nCrash 15|15|12\nCoco 12|12|15\nVillains\nCortex 9|9|9\nTiny 6|6|6")
	require.NoError(t, err)
	assert.True(t, scored.Submitted)
	assert.Equal(t, 20.0, scored.Results[0].Delta)

	predicted, err := s.Resolve(context.Background(), lobby43)
	require.NoError(t, err)
	assert.False(t, predicted.Submitted)
	assert.Equal(t, 2, predicted.Replayed)

	// team averaging gives teammates the same change
	crash, _ := domain.ResultFor(predicted.Results, "Crash")
	coco, _ := domain.ResultFor(predicted.Results, "Coco")
	assert.Equal(t, crash.Delta, coco.Delta)
	assert.Greater(t, crash.Delta, 0.0)
	// lobby 42 was lost by the Bandicoots before this one
	assert.Less(t, crash.OriginalRating, 2400.0)
}
