package server

import "ctrnf-scores/internal/domain"

type ParseTableRequest struct {
	Text string `json:"text"`
}

type ParseTableResponse struct {
	Match Match `json:"match"`
}

type ResolveTableRequest struct {
	Text string `json:"text"`
}

type ResolveTableResponse struct {
	Match     Match    `json:"match"`
	Results   []Result `json:"results"`
	Submitted bool     `json:"submitted"`
	MatchID   string   `json:"matchId,omitempty"`
	Replayed  int      `json:"replayed"`
}

type SubmitTableRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// SubmitTableResponse carries Error instead of failing the call when the table
// was stored but could not be resolved.
type SubmitTableResponse struct {
	SubmissionID string                `json:"submissionId"`
	Template     string                `json:"template"`
	Resolution   *ResolveTableResponse `json:"resolution,omitempty"`
	Error        string                `json:"error,omitempty"`
}

type DeleteSubmissionRequest struct {
	ID string `json:"id"`
}

type DeleteSubmissionResponse struct{}

type Match struct {
	BoardID     string `json:"boardId"`
	LobbyNumber int    `json:"lobbyNumber"`
	LobbyName   string `json:"lobbyName"`
	LobbyType   string `json:"lobbyType"`
	TeamMode    bool   `json:"teamMode"`
	Template    string `json:"template"`
	Teams       []Team `json:"teams"`
}

type Team struct {
	Name     string   `json:"name"`
	Color    string   `json:"color,omitempty"`
	Score    int      `json:"score"`
	Penalty  int      `json:"penalty"`
	Position int      `json:"position"`
	Players  []Player `json:"players"`
}

type Player struct {
	Name           string `json:"name"`
	Flag           string `json:"flag,omitempty"`
	Scores         []int  `json:"scores"`
	Score          int    `json:"score"`
	Penalty        int    `json:"penalty"`
	InTeamPosition int    `json:"inTeamPosition"`
	Position       int    `json:"position"`
}

type Result struct {
	Name            string  `json:"name"`
	Team            string  `json:"team"`
	OriginalRanking *int    `json:"originalRanking"`
	FinalRanking    *int    `json:"finalRanking"`
	OriginalRating  float64 `json:"originalRating"`
	Delta           float64 `json:"delta"`
	FinalRating     float64 `json:"finalRating"`
	OriginalTier    string  `json:"originalTier,omitempty"`
	FinalTier       string  `json:"finalTier,omitempty"`
	TeamPosition    int     `json:"teamPosition"`
	InTeamPosition  int     `json:"inTeamPosition"`
	Position        int     `json:"position"`
}

func toMatch(m domain.Match) Match {
	out := Match{
		BoardID:     m.BoardID,
		LobbyNumber: m.LobbyNumber,
		LobbyName:   m.LobbyName,
		LobbyType:   string(m.LobbyType),
		TeamMode:    m.TeamMode,
		Template:    m.Template,
		Teams:       make([]Team, 0, len(m.Teams)),
	}
	for _, t := range m.Teams {
		team := Team{
			Name:     t.Name,
			Color:    t.Color,
			Score:    t.Score,
			Penalty:  t.Penalty,
			Position: t.Position,
			Players:  make([]Player, 0, len(t.Players)),
		}
		for _, p := range t.Players {
			team.Players = append(team.Players, Player{
				Name:           p.Name,
				Flag:           p.Flag,
				Scores:         p.Scores,
				Score:          p.Score,
				Penalty:        p.Penalty,
				InTeamPosition: p.InTeamPosition,
				Position:       p.Position,
			})
		}
		out.Teams = append(out.Teams, team)
	}
	return out
}

func toResults(results []domain.MatchResult) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		out = append(out, Result{
			Name:            r.Name,
			Team:            r.Team,
			OriginalRanking: r.OriginalRanking,
			FinalRanking:    r.FinalRanking,
			OriginalRating:  r.OriginalRating,
			Delta:           r.Delta,
			FinalRating:     r.FinalRating,
			OriginalTier:    r.OriginalTier,
			FinalTier:       r.FinalTier,
			TeamPosition:    r.TeamPosition,
			InTeamPosition:  r.InTeamPosition,
			Position:        r.Position,
		})
	}
	return out
}
