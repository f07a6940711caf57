package rating

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrnf-scores/internal/domain"
	"ctrnf-scores/internal/table"
)

var testTiers = []domain.BoardTier{
	{Name: "Gold", LowerBound: 1500},
	{Name: "Bronze", LowerBound: 0},
	{Name: "Silver", LowerBound: 1000},
}

func eloSettings() domain.RatingSettings {
	return domain.RatingSettings{
		Scheme:         domain.SchemeElo,
		Initial:        1000,
		MinRating:      0,
		ScalingFactors: []float64{32, 24, 20, 16},
	}
}

func mmrSettings() domain.RatingSettings {
	return domain.RatingSettings{
		Scheme:         domain.SchemeMMR,
		Initial:        2000,
		ScalingFactors: []float64{3.5, 3, 2.5, 2},
		Baselines:      []float64{10, 12, 14, 16},
	}
}

func parse(t *testing.T, text string, ratings map[string]float64) domain.Match {
	t.Helper()
	m, err := table.Parse(text)
	require.NoError(t, err)
	return m.WithBoardRatings(ratings, 1000)
}

func TestEloHeadToHeadIsZeroSum(t *testing.T) {
	tests := []struct {
		name           string
		winner, loser  float64
		wantWinnerGain float64
	}{
		{"equal ratings", 1000, 1000, 16},
		{"favourite wins", 1200, 1000, 32 * (1 - 1/(1+math.Pow(10, -200.0/400)))},
		{"underdog wins", 1000, 1200, 32 * (1 - 1/(1+math.Pow(10, 200.0/400)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parse(t, "Lobby #1 - Itemless FFA\nWinner 10|10\nLoser 5|5",
				map[string]float64{"Winner": tt.winner, "Loser": tt.loser})

			results, err := NewCalculator(eloSettings(), testTiers).Calculate(m)
			require.NoError(t, err)
			require.Len(t, results, 2)

			assert.Equal(t, "Winner", results[0].Name)
			assert.InDelta(t, tt.wantWinnerGain, results[0].Delta, 1e-9)
			assert.InDelta(t, 0, results[0].Delta+results[1].Delta, 1e-9)
			assert.InDelta(t, tt.winner+tt.wantWinnerGain, results[0].FinalRating, 1e-9)
			assert.Nil(t, results[0].OriginalRanking)
			assert.Nil(t, results[0].FinalRanking)
		})
	}
}

func TestEloTieBetweenEquals(t *testing.T) {
	m := parse(t, "Lobby #1 - Itemless FFA\nA 10\nB 10", nil)
	results, err := NewCalculator(eloSettings(), nil).Calculate(m)
	require.NoError(t, err)
	for _, r := range results {
		assert.InDelta(t, 0, r.Delta, 1e-9)
		assert.Empty(t, r.FinalTier)
	}
}

func TestMMRWinAndLoss(t *testing.T) {
	m := parse(t, "Lobby #1 - FFA\nA 10\nB 8\nC 5",
		map[string]float64{"A": 2000, "B": 2000, "C": 2000})

	results, err := NewCalculator(mmrSettings(), nil).Calculate(m)
	require.NoError(t, err)

	// equal ratings: every decisive pair is worth 1 + baseline
	win := 1 + 10.0
	a, _ := domain.ResultFor(results, "A")
	b, _ := domain.ResultFor(results, "B")
	c, _ := domain.ResultFor(results, "C")
	assert.InDelta(t, (win+win)/2, a.Delta, 1e-9)
	assert.InDelta(t, 0, b.Delta, 1e-9)
	assert.InDelta(t, -(win+win)/2, c.Delta, 1e-9)
}

func TestMMRUpsetWin(t *testing.T) {
	m := parse(t, "Lobby #1 - FFA\nLow 10\nHigh 5",
		map[string]float64{"Low": 1500, "High": 2500})

	results, err := NewCalculator(mmrSettings(), nil).Calculate(m)
	require.NoError(t, err)

	want := 1 + 10*math.Pow(1+1000.0/9998, 3.5)
	low, _ := domain.ResultFor(results, "Low")
	high, _ := domain.ResultFor(results, "High")
	assert.InDelta(t, want, low.Delta, 1e-9)
	assert.InDelta(t, -want, high.Delta, 1e-9)
}

func TestMMRTieFavoursUnderdog(t *testing.T) {
	m := parse(t, "Lobby #1 - FFA\nLow 10\nHigh 10",
		map[string]float64{"Low": 1900, "High": 2100})

	results, err := NewCalculator(mmrSettings(), nil).Calculate(m)
	require.NoError(t, err)

	diff := 200.0 / 9998
	want := 1.5 * 3.5 * 11 * math.Pow(math.Pow(diff*diff, 1.0/3), 2)
	low, _ := domain.ResultFor(results, "Low")
	high, _ := domain.ResultFor(results, "High")
	assert.InDelta(t, want, low.Delta, 1e-9)
	assert.InDelta(t, -want, high.Delta, 1e-9)
}

func TestCalculateClampsToMinimum(t *testing.T) {
	settings := eloSettings()
	settings.MinRating = 100
	m := parse(t, "Lobby #1 - Itemless FFA\nA 10\nB 5", map[string]float64{"A": 1000, "B": 100})

	results, err := NewCalculator(settings, testTiers).Calculate(m)
	require.NoError(t, err)

	b, _ := domain.ResultFor(results, "B")
	assert.Less(t, b.OriginalRating+b.Delta, 100.0)
	assert.Equal(t, 100.0, b.FinalRating)
	assert.Equal(t, "Bronze", b.FinalTier)
}

func TestCalculateAveragesTeams(t *testing.T) {
	text := "Lobby #2 - Itemless Duos\nRed\nA 10\nB 8\nBlue\nC 5\nD 4"
	ratings := map[string]float64{"A": 1000, "B": 1200, "C": 1000, "D": 1000}

	settings := eloSettings()
	plain, err := NewCalculator(settings, testTiers).Calculate(parse(t, text, ratings))
	require.NoError(t, err)
	a, _ := domain.ResultFor(plain, "A")
	b, _ := domain.ResultFor(plain, "B")
	assert.NotEqual(t, a.Delta, b.Delta)

	settings.AverageByTeam = true
	averaged, err := NewCalculator(settings, testTiers).Calculate(parse(t, text, ratings))
	require.NoError(t, err)
	a2, _ := domain.ResultFor(averaged, "A")
	b2, _ := domain.ResultFor(averaged, "B")
	assert.InDelta(t, (a.Delta+b.Delta)/2, a2.Delta, 1e-9)
	assert.Equal(t, a2.Delta, b2.Delta)

	sum := 0.0
	for _, r := range averaged {
		sum += r.Delta
	}
	assert.InDelta(t, 0, sum, 1e-9)

	var order []string
	for _, r := range averaged {
		order = append(order, r.Name)
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, order)
	assert.Equal(t, "Red", averaged[0].Team)
}

func TestCalculateRejectsInvalidMatches(t *testing.T) {
	m := parse(t, "Lobby #1 - FFA\nA 10\nB 5", nil)

	_, err := NewCalculator(domain.RatingSettings{Scheme: "glicko"}, nil).Calculate(m)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewCalculator(domain.RatingSettings{Scheme: domain.SchemeMMR, ScalingFactors: []float64{1}}, nil).Calculate(m)
	assert.ErrorIs(t, err, domain.ErrValidation)

	lonely := m.Clone()
	lonely.Teams = lonely.Teams[:1]
	_, err = NewCalculator(eloSettings(), nil).Calculate(lonely)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCalculateSubmitted(t *testing.T) {
	m, err := table.Parse("Lobby #4 - Duos\nRed\nA 10\nB 8\nBlue\nC 5\nD 4")
	require.NoError(t, err)
	m.ID = "match-1"

	updates := []domain.RatingUpdate{
		{Name: "A", RatingBefore: 1400, RatingAfter: 1520, RankingBefore: 4, RankingAfter: 2},
		{Name: "B", RatingBefore: 1000, RatingAfter: 1100, RankingBefore: -1, RankingAfter: 7, FirstMatch: true},
		{Name: "C", RatingBefore: 1200, RatingAfter: 1150, RankingBefore: 5, RankingAfter: -1},
		{Name: "D", RatingBefore: 900, RatingAfter: 880, RankingBefore: 9, RankingAfter: 9},
	}

	results, err := NewCalculator(mmrSettings(), testTiers).CalculateSubmitted(m, updates)
	require.NoError(t, err)
	require.Len(t, results, 4)

	a := results[0]
	assert.Equal(t, "A", a.Name)
	assert.Equal(t, "Red", a.Team)
	assert.Equal(t, 120.0, a.Delta)
	assert.Equal(t, 5, *a.OriginalRanking)
	assert.Equal(t, 3, *a.FinalRanking)
	assert.Equal(t, "Silver", a.OriginalTier)
	assert.Equal(t, "Gold", a.FinalTier)

	b, _ := domain.ResultFor(results, "B")
	assert.Nil(t, b.OriginalRanking)
	assert.Equal(t, 8, *b.FinalRanking)

	c, _ := domain.ResultFor(results, "C")
	assert.Nil(t, c.FinalRanking)

	d, _ := domain.ResultFor(results, "D")
	assert.Equal(t, "Bronze", d.FinalTier)

	_, err = NewCalculator(mmrSettings(), testTiers).CalculateSubmitted(m, updates[:3])
	assert.ErrorIs(t, err, domain.ErrCalculation)

	_, err = NewCalculator(mmrSettings(), testTiers).CalculateSubmitted(domain.Match{}, updates)
	assert.ErrorIs(t, err, domain.ErrCalculation)
}

func TestTierFor(t *testing.T) {
	tiers := SortTiers(testTiers)
	assert.Equal(t, "Bronze", TierFor(tiers, -50))
	assert.Equal(t, "Bronze", TierFor(tiers, 999.9))
	assert.Equal(t, "Silver", TierFor(tiers, 1000))
	assert.Equal(t, "Gold", TierFor(tiers, 4000))
	assert.Empty(t, TierFor(nil, 1000))
}

func TestApplyBoard(t *testing.T) {
	rank := func(v int) *int { return &v }
	players := []domain.BoardPlayer{
		{Name: "X", Rating: 1500, Ranking: rank(1)},
		{Name: "Y", Rating: 1200, Ranking: rank(2)},
		{Name: "A", Rating: 1100, Ranking: rank(3)},
	}
	results := []domain.MatchResult{
		{Name: "A", OriginalRating: 1100, FinalRating: 1300},
		{Name: "N", OriginalRating: 1150, FinalRating: 1250},
	}

	rated := ApplyBoardRatings(results, players)
	wantRated := []domain.BoardPlayer{
		{Name: "X", Rating: 1500, Ranking: rank(1)},
		{Name: "Y", Rating: 1200, Ranking: rank(2)},
		{Name: "A", Rating: 1300, Ranking: rank(3)},
		{Name: "N", Rating: 1250},
	}
	if diff := cmp.Diff(wantRated, rated); diff != "" {
		t.Errorf("ratings mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1100.0, players[2].Rating, "input board is not modified")

	ranked, board := ApplyBoardRankings(results, rated, []string{"N"})
	wantBoard := []domain.BoardPlayer{
		{Name: "X", Rating: 1500, Ranking: rank(1)},
		{Name: "A", Rating: 1300, Ranking: rank(2)},
		{Name: "N", Rating: 1250, Ranking: rank(3)},
		{Name: "Y", Rating: 1200, Ranking: rank(4)},
	}
	if diff := cmp.Diff(wantBoard, board); diff != "" {
		t.Errorf("board mismatch (-want +got):\n%s", diff)
	}

	a, _ := domain.ResultFor(ranked, "A")
	assert.Equal(t, 4, *a.OriginalRanking)
	assert.Equal(t, 2, *a.FinalRanking)
	n, _ := domain.ResultFor(ranked, "N")
	assert.Nil(t, n.OriginalRanking)
	assert.Equal(t, 3, *n.FinalRanking)
	assert.Nil(t, results[0].OriginalRanking)
	assert.Equal(t, 3, *rated[2].Ranking)
}
