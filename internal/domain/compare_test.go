package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func duoMatch(scoreA int, penalty int) Match {
	return Match{
		BoardID:     BoardTeams,
		LobbyNumber: 8,
		LobbyType:   RaceItemsDuos,
		TeamMode:    true,
		Teams: []Team{
			{
				Name:        "Red",
				Penalty:     penalty,
				PlayerOrder: []string{"A", "B"},
				Players: []Player{
					{Name: "A", Scores: []int{scoreA, 5}},
					{Name: "B", Scores: []int{3, 3}},
				},
			},
			{
				Name:        "Blue",
				PlayerOrder: []string{"C", "D"},
				Players: []Player{
					{Name: "C", Scores: []int{4, 4}},
					{Name: "D", Scores: []int{2, 2}, Penalty: 1},
				},
			},
		},
	}
}

func TestMatchesEqualAndDuplicated(t *testing.T) {
	base := duoMatch(10, 0)

	same := duoMatch(10, 0)
	assert.True(t, MatchesEqual(base, same))
	assert.True(t, MatchesDuplicated(base, same))

	rescored := duoMatch(12, 0)
	assert.False(t, MatchesEqual(base, rescored))
	assert.True(t, MatchesDuplicated(base, rescored))

	penalised := duoMatch(10, 5)
	assert.False(t, MatchesEqual(base, penalised))
	assert.True(t, MatchesDuplicated(base, penalised))
}

func TestMatchesEqualIgnoresTrackSplit(t *testing.T) {
	a := duoMatch(10, 0)
	b := duoMatch(10, 0)
	b.Teams[0].Players[0].Scores = []int{7, 8}
	assert.True(t, MatchesEqual(a, b))

	// a bonus and a penalty of the same size net the same
	b.Teams[1].Players[1].Penalty = -1
	assert.True(t, MatchesEqual(a, b))
}

func TestMatchesEqualIsSymmetric(t *testing.T) {
	a := duoMatch(10, 0)
	b := duoMatch(10, 0)
	b.Teams[1].Players[1].Name = "E"
	b.Teams[1].PlayerOrder = []string{"C", "E"}

	assert.False(t, MatchesEqual(a, b))
	assert.False(t, MatchesEqual(b, a))
}

func TestMatchesDuplicatedIsOrderSensitive(t *testing.T) {
	a := duoMatch(10, 0)
	b := duoMatch(10, 0)
	b.Teams[0].PlayerOrder = []string{"B", "A"}
	assert.False(t, MatchesDuplicated(a, b))

	// team order does not matter
	c := duoMatch(10, 0)
	c.Teams[0], c.Teams[1] = c.Teams[1], c.Teams[0]
	assert.True(t, MatchesDuplicated(a, c))
	assert.True(t, MatchesEqual(a, c))
}

func TestMatchesDifferentLobby(t *testing.T) {
	a := duoMatch(10, 0)
	b := duoMatch(10, 0)
	b.LobbyNumber = 9
	assert.False(t, MatchesEqual(a, b))
	assert.False(t, MatchesDuplicated(a, b))

	c := duoMatch(10, 0)
	c.LobbyType = Insta3v3
	assert.False(t, MatchesDuplicated(a, c))
}

func TestLobbyCatalogue(t *testing.T) {
	assert.True(t, InstaDuos.TeamMode())
	assert.True(t, Battle4v4.TeamMode())
	assert.False(t, RaceSurvival.TeamMode())
	assert.Equal(t, Category3v3, RaceItemless3v3.Category())
	assert.Empty(t, Battle1v1.Board())
	assert.Equal(t, []LobbyType{BattleFFA, BattleDuos, Battle3v3, Battle4v4}, BoardLobbyTypes(BoardBattle))

	teams, players := BattleDuos.DefaultSize()
	assert.Equal(t, 2, teams)
	assert.Equal(t, 4, players)
}

func TestExplain(t *testing.T) {
	assert.Empty(t, Explain(nil))
	assert.Contains(t, Explain(ErrParse), "valid table template")
	assert.Contains(t, Explain(ErrResolutionNotFound), "lobby number exists")
}
