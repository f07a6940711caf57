package rating

import (
	"fmt"

	"ctrnf-scores/internal/domain"
)

// Scheme computes the rating change of one player against one opponent.
type Scheme interface {
	OpponentDelta(player domain.Player, playerTeam domain.Team, opponent domain.Player, opponentTeam domain.Team) float64
	// Adjust turns the summed opponent deltas into the player's match delta.
	Adjust(player domain.Player, total float64) float64
	Valid() bool
}

// NewScheme builds the scheme named by the settings for the given match.
func NewScheme(m domain.Match, settings domain.RatingSettings) (Scheme, error) {
	b := newBase(m)
	category := int(m.LobbyType.Category())

	switch settings.Scheme {
	case domain.SchemeElo:
		s := &elo{base: b}
		if category < len(settings.ScalingFactors) {
			s.factor, s.configured = settings.ScalingFactors[category], true
		}
		return s, nil
	case domain.SchemeMMR:
		s := &mmr{base: b}
		if category < len(settings.ScalingFactors) && category < len(settings.Baselines) {
			s.factor = settings.ScalingFactors[category]
			s.baseline = settings.Baselines[category]
			s.configured = true
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: unsupported rating scheme %q", domain.ErrValidation, settings.Scheme)
}

type base struct {
	teamMode  bool
	players   int
	opponents map[string]int
}

func newBase(m domain.Match) base {
	b := base{
		teamMode:  m.TeamMode,
		players:   m.PlayerCount(),
		opponents: make(map[string]int, m.PlayerCount()),
	}
	for _, t := range m.Teams {
		for _, p := range t.Players {
			if b.teamMode {
				b.opponents[p.Name] = b.players - len(t.Players)
			} else {
				b.opponents[p.Name] = b.players - 1
			}
		}
	}
	return b
}

func (b base) points(p domain.Player, t domain.Team) int {
	if b.teamMode {
		return t.Points()
	}
	return p.Points()
}

func (b base) valid() bool {
	for _, n := range b.opponents {
		if n == 0 {
			return false
		}
	}
	return b.players >= 2
}
