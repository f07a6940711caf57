package table

import (
	"cmp"
	"slices"

	"ctrnf-scores/internal/domain"
)

// SortTeams returns a ranked copy of teams. Table order and the typed player
// order are recorded first, then teams are competition-ranked by points, players
// inside each team the same way, and finally all players across teams.
func SortTeams(teams []domain.Team) []domain.Team {
	out := make([]domain.Team, len(teams))
	for i, t := range teams {
		c := t.Clone()
		c.TableOrder = i
		c.PlayerOrder = make([]string, len(c.Players))
		for j, p := range c.Players {
			c.PlayerOrder[j] = p.Name
		}
		out[i] = c
	}

	slices.SortStableFunc(out, func(a, b domain.Team) int {
		return cmp.Compare(b.Points(), a.Points())
	})
	teamRanks := competitionRanks(len(out), func(i int) int { return out[i].Points() })
	for i := range out {
		out[i].Position = teamRanks[i]

		players := out[i].Players
		slices.SortStableFunc(players, func(a, b domain.Player) int {
			return cmp.Compare(b.Points(), a.Points())
		})
		ranks := competitionRanks(len(players), func(j int) int { return players[j].Points() })
		for j := range players {
			players[j].InTeamPosition = ranks[j]
		}
	}

	type ref struct{ team, player int }
	var all []ref
	for i, t := range out {
		for j := range t.Players {
			all = append(all, ref{i, j})
		}
	}
	points := func(r ref) int { return out[r.team].Players[r.player].Points() }
	slices.SortStableFunc(all, func(a, b ref) int {
		return cmp.Compare(points(b), points(a))
	})
	overall := competitionRanks(len(all), func(i int) int { return points(all[i]) })
	for i, r := range all {
		out[r.team].Players[r.player].Position = overall[i]
	}

	return out
}

// competitionRanks ranks n values already sorted descending: [10, 10, 5] gives
// [1, 1, 3].
func competitionRanks(n int, value func(int) int) []int {
	ranks := make([]int, n)
	for i := range ranks {
		if i > 0 && value(i) == value(i-1) {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}
