package rating

import (
	"cmp"
	"slices"

	"ctrnf-scores/internal/domain"
)

// ApplyBoardRatings returns the board with every match player's final rating.
// Players the board has not seen yet are appended without a ranking.
func ApplyBoardRatings(results []domain.MatchResult, players []domain.BoardPlayer) []domain.BoardPlayer {
	out := cloneBoard(players)
	seen := make(map[string]struct{}, len(out))
	for i := range out {
		seen[out[i].Name] = struct{}{}
		if r, ok := domain.ResultFor(results, out[i].Name); ok {
			out[i].Rating = r.FinalRating
		}
	}
	for _, r := range results {
		if _, ok := seen[r.Name]; !ok {
			out = append(out, domain.BoardPlayer{Name: r.Name, Rating: r.FinalRating})
			seen[r.Name] = struct{}{}
		}
	}
	return out
}

// ApplyBoardRankings re-ranks the board after a match and fills the rankings of
// the results. Original rankings come from the board as it was; returning
// players drop one place for each new player who entered above them.
func ApplyBoardRankings(results []domain.MatchResult, players []domain.BoardPlayer, newPlayers []string) ([]domain.MatchResult, []domain.BoardPlayer) {
	board := cloneBoard(players)
	index := make(map[string]int, len(board))
	for i, p := range board {
		index[p.Name] = i
	}

	out := slices.Clone(results)
	for i := range out {
		out[i].OriginalRanking, out[i].FinalRanking = nil, nil
		if at, ok := index[out[i].Name]; ok {
			if board[at].Ranking != nil {
				out[i].OriginalRanking = ranking(*board[at].Ranking)
			}
			board[at].Rating = out[i].FinalRating
			continue
		}
		index[out[i].Name] = len(board)
		board = append(board, domain.BoardPlayer{Name: out[i].Name, Rating: out[i].FinalRating})
	}

	slices.SortStableFunc(board, func(a, b domain.BoardPlayer) int {
		return cmp.Compare(b.Rating, a.Rating)
	})
	final := make(map[string]int, len(board))
	for i := range board {
		board[i].Ranking = ranking(i + 1)
		final[board[i].Name] = i + 1
	}

	for i := range out {
		out[i].FinalRanking = ranking(final[out[i].Name])
		if slices.Contains(newPlayers, out[i].Name) || out[i].OriginalRanking == nil {
			continue
		}
		for _, name := range newPlayers {
			if n, ok := domain.ResultFor(results, name); ok && n.OriginalRating > out[i].OriginalRating {
				*out[i].OriginalRanking++
			}
		}
	}
	return out, board
}

func cloneBoard(players []domain.BoardPlayer) []domain.BoardPlayer {
	out := make([]domain.BoardPlayer, len(players))
	for i, p := range players {
		out[i] = p
		if p.Ranking != nil {
			out[i].Ranking = ranking(*p.Ranking)
		}
	}
	return out
}
