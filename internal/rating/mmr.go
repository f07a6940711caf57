package rating

import (
	"math"

	"ctrnf-scores/internal/domain"
)

const (
	mmrFloor   = -9997
	mmrDivisor = 9998
)

type mmr struct {
	base
	factor     float64
	baseline   float64
	configured bool
}

func (s *mmr) OpponentDelta(player domain.Player, playerTeam domain.Team, opponent domain.Player, opponentTeam domain.Team) float64 {
	own, other := s.points(player, playerTeam), s.points(opponent, opponentTeam)

	if own == other {
		// the lower rated side gains on a tie
		if player.BoardRating < opponent.BoardRating {
			return s.tie(player.BoardRating, opponent.BoardRating)
		}
		return -s.tie(player.BoardRating, opponent.BoardRating)
	}
	if own > other {
		return s.win(player.BoardRating, opponent.BoardRating)
	}
	return -s.win(opponent.BoardRating, player.BoardRating)
}

func (s *mmr) win(winner, loser float64) float64 {
	return 1 + s.baseline*math.Pow(1+math.Max(mmrFloor, loser-winner)/mmrDivisor, s.factor)
}

func (s *mmr) tie(rating, opponent float64) float64 {
	diff := math.Max(mmrFloor, rating-opponent) / mmrDivisor
	return 1.5 * s.factor * (s.baseline + 1) * math.Pow(math.Cbrt(diff*diff), 2)
}

func (s *mmr) Adjust(player domain.Player, total float64) float64 {
	return total / float64(s.opponents[player.Name])
}

func (s *mmr) Valid() bool {
	return s.valid() && s.configured
}
