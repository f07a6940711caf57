package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrnf-scores/internal/domain"
)

func solo(name string, score, penalty int) domain.Team {
	return domain.Team{
		Name:    name,
		Score:   score,
		Penalty: penalty,
		Players: []domain.Player{{Name: name, Scores: []int{score}, Score: score, Penalty: penalty}},
	}
}

func TestCompetitionRanks(t *testing.T) {
	values := []int{10, 10, 5}
	got := competitionRanks(len(values), func(i int) int { return values[i] })
	assert.Equal(t, []int{1, 1, 3}, got)
}

func TestSortTeamsTies(t *testing.T) {
	teams := []domain.Team{solo("c", 5, 0), solo("a", 10, 0), solo("b", 12, 2)}

	sorted := SortTeams(teams)

	var names []string
	var positions []int
	for _, team := range sorted {
		names = append(names, team.Name)
		positions = append(positions, team.Position)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, []int{1, 1, 3}, positions)
	assert.Equal(t, []int{1, 2, 0}, []int{sorted[0].TableOrder, sorted[1].TableOrder, sorted[2].TableOrder})
	assert.Equal(t, 3, sorted[2].Players[0].Position)

	// input untouched
	assert.Zero(t, teams[0].Position)
}

func TestSortTeamsPlayers(t *testing.T) {
	team := domain.Team{
		Name: "Red",
		Players: []domain.Player{
			{Name: "low", Score: 10},
			{Name: "high", Score: 30},
			{Name: "mid", Score: 30, Penalty: 5},
			{Name: "tie", Score: 10},
		},
		Score: 80,
	}
	other := domain.Team{
		Name:    "Blue",
		Players: []domain.Player{{Name: "solo", Score: 40}, {Name: "zero", Score: 0}},
		Score:   40,
	}

	sorted := SortTeams([]domain.Team{team, other})
	require.Len(t, sorted, 2)

	red := sorted[0]
	assert.Equal(t, []string{"low", "high", "mid", "tie"}, red.PlayerOrder)

	type rank struct {
		Name             string
		InTeam, Position int
	}
	var got []rank
	for _, tm := range sorted {
		for _, p := range tm.Players {
			got = append(got, rank{p.Name, p.InTeamPosition, p.Position})
		}
	}
	want := []rank{
		{"high", 1, 2},
		{"mid", 2, 3},
		{"low", 3, 4},
		{"tie", 3, 4},
		{"solo", 1, 1},
		{"zero", 2, 6},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ranks mismatch (-want +got):\n%s", diff)
	}
}
