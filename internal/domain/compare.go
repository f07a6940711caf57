package domain

import "slices"

// MatchesEqual reports whether two records describe the same real-world match:
// same board, lobby number and type, same penalty for every team that has the
// same player order, and the same net score for every player.
func MatchesEqual(a, b Match) bool {
	if a.BoardID != b.BoardID || a.LobbyNumber != b.LobbyNumber || a.LobbyType != b.LobbyType {
		return false
	}
	if len(a.Teams) != len(b.Teams) {
		return false
	}
	for _, ta := range a.Teams {
		for _, tb := range b.Teams {
			if slices.Equal(ta.PlayerOrder, tb.PlayerOrder) && ta.Penalty != tb.Penalty {
				return false
			}
		}
	}
	return netScoresMatch(a, b) && netScoresMatch(b, a)
}

// MatchesDuplicated reports whether b is a re-post of a with the same teams
// typed in the same order. Scores are not compared.
func MatchesDuplicated(a, b Match) bool {
	if a.BoardID != b.BoardID || a.LobbyNumber != b.LobbyNumber || a.LobbyType != b.LobbyType {
		return false
	}
	if len(a.Teams) != len(b.Teams) {
		return false
	}
	for _, ta := range a.Teams {
		found := false
		for _, tb := range b.Teams {
			if slices.Equal(ta.PlayerOrder, tb.PlayerOrder) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func netScoresMatch(a, b Match) bool {
	net := make(map[string]int, b.PlayerCount())
	for _, t := range b.Teams {
		for _, p := range t.Players {
			net[p.Name] = netScore(p)
		}
	}
	for _, t := range a.Teams {
		for _, p := range t.Players {
			other, ok := net[p.Name]
			if !ok || other != netScore(p) {
				return false
			}
		}
	}
	return true
}

func netScore(p Player) int {
	sum := 0
	for _, s := range p.Scores {
		sum += s
	}
	if p.Penalty < 0 {
		return sum + p.Penalty
	}
	return sum - p.Penalty
}
