package rating

import (
	"math"

	"ctrnf-scores/internal/domain"
)

type elo struct {
	base
	factor     float64
	configured bool
}

func (s *elo) OpponentDelta(player domain.Player, playerTeam domain.Team, opponent domain.Player, opponentTeam domain.Team) float64 {
	own, other := s.points(player, playerTeam), s.points(opponent, opponentTeam)

	actual := 0.0
	switch {
	case own > other:
		actual = 1
	case own == other:
		actual = 0.5
	}
	expected := 1 / (1 + math.Pow(10, (opponent.BoardRating-player.BoardRating)/400))
	k := s.factor / float64(s.opponents[player.Name])

	return k * (actual - expected)
}

func (s *elo) Adjust(_ domain.Player, total float64) float64 {
	return total
}

func (s *elo) Valid() bool {
	return s.valid() && s.configured
}
