package rating

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"ctrnf-scores/internal/domain"
)

type Calculator struct {
	settings domain.RatingSettings
	tiers    []domain.BoardTier
}

func NewCalculator(settings domain.RatingSettings, tiers []domain.BoardTier) *Calculator {
	return &Calculator{
		settings: settings,
		tiers:    SortTiers(tiers),
	}
}

type rankedResult struct {
	result domain.MatchResult
	team   int
}

// Calculate predicts rating changes for a match whose players carry their
// current board ratings. Rankings are left unset.
func (c *Calculator) Calculate(m domain.Match) ([]domain.MatchResult, error) {
	scheme, err := NewScheme(m, c.settings)
	if err != nil {
		return nil, err
	}
	if !scheme.Valid() {
		return nil, fmt.Errorf("%w: lobby %d needs at least two players with opponents and scheme parameters for %s",
			domain.ErrValidation, m.LobbyNumber, m.LobbyType)
	}

	deltas := make(map[string]float64, m.PlayerCount())
	for ti, team := range m.Teams {
		for _, player := range team.Players {
			total := 0.0
			for oi, opponentTeam := range m.Teams {
				if oi == ti {
					continue
				}
				for _, opponent := range opponentTeam.Players {
					total += scheme.OpponentDelta(player, team, opponent, opponentTeam)
				}
			}
			delta := scheme.Adjust(player, total)
			if math.IsNaN(delta) || math.IsInf(delta, 0) {
				return nil, fmt.Errorf("%w: non-finite delta for %s", domain.ErrCalculation, player.Name)
			}
			deltas[player.Name] = delta
		}
	}

	if m.TeamMode && c.settings.AverageByTeam {
		for _, team := range m.Teams {
			mean := 0.0
			for _, p := range team.Players {
				mean += deltas[p.Name]
			}
			mean /= float64(len(team.Players))
			for _, p := range team.Players {
				deltas[p.Name] = mean
			}
		}
	}

	var ranked []rankedResult
	for ti, team := range m.Teams {
		for _, p := range team.Players {
			final := max(p.BoardRating+deltas[p.Name], c.settings.MinRating)
			ranked = append(ranked, rankedResult{
				team: ti,
				result: domain.MatchResult{
					Name:           p.Name,
					Team:           team.Name,
					OriginalRating: p.BoardRating,
					Delta:          deltas[p.Name],
					FinalRating:    final,
					OriginalTier:   TierFor(c.tiers, p.BoardRating),
					FinalTier:      TierFor(c.tiers, final),
					TeamPosition:   team.Position,
					InTeamPosition: p.InTeamPosition,
					Position:       p.Position,
				},
			})
		}
	}
	return sortResults(ranked), nil
}

// CalculateSubmitted shapes results of a match the board already scored from
// its authoritative rating updates.
func (c *Calculator) CalculateSubmitted(m domain.Match, updates []domain.RatingUpdate) ([]domain.MatchResult, error) {
	byName := make(map[string]domain.RatingUpdate, len(updates))
	for _, u := range updates {
		byName[u.Name] = u
	}

	var ranked []rankedResult
	for ti, team := range m.Teams {
		for _, p := range team.Players {
			u, ok := byName[p.Name]
			if !ok {
				return nil, fmt.Errorf("%w: no rating update for %s in match %s", domain.ErrCalculation, p.Name, m.ID)
			}

			r := domain.MatchResult{
				Name:           p.Name,
				Team:           p.Name,
				OriginalRating: u.RatingBefore,
				Delta:          u.RatingAfter - u.RatingBefore,
				FinalRating:    u.RatingAfter,
				OriginalTier:   TierFor(c.tiers, u.RatingBefore),
				FinalTier:      TierFor(c.tiers, u.RatingAfter),
				TeamPosition:   team.Position,
				InTeamPosition: p.InTeamPosition,
				Position:       p.Position,
			}
			if m.TeamMode {
				r.Team = team.Name
			}
			if !u.FirstMatch && u.RankingBefore >= 0 {
				r.OriginalRanking = ranking(u.RankingBefore + 1)
			}
			if u.RankingAfter >= 0 {
				r.FinalRanking = ranking(u.RankingAfter + 1)
			}
			ranked = append(ranked, rankedResult{result: r, team: ti})
		}
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: match %s has no players", domain.ErrCalculation, m.ID)
	}
	return sortResults(ranked), nil
}

func sortResults(ranked []rankedResult) []domain.MatchResult {
	slices.SortStableFunc(ranked, func(a, b rankedResult) int {
		return cmp.Or(
			cmp.Compare(a.result.TeamPosition, b.result.TeamPosition),
			cmp.Compare(a.team, b.team),
			cmp.Compare(a.result.Position, b.result.Position),
		)
	})
	out := make([]domain.MatchResult, len(ranked))
	for i, r := range ranked {
		out[i] = r.result
	}
	return out
}

func ranking(v int) *int {
	return &v
}
