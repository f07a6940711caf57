package api

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"ctrnf-scores/internal/domain"
	"ctrnf-scores/internal/table"
)

var lobbyNumberPattern = regexp.MustCompile(`#(\d+)`)

// millis decodes a timestamp in milliseconds given either as a number or a
// numeric string.
type millis struct {
	time.Time
}

func (m *millis) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", b, err)
	}
	if v > 0 {
		m.Time = time.UnixMilli(int64(v)).UTC()
	}
	return nil
}

type remoteBoard struct {
	Name    string `json:"name"`
	Players []struct {
		Name    string  `json:"name"`
		Rating  float64 `json:"rating"`
		Ranking *int    `json:"ranking"`
	} `json:"players"`
	Tiers []struct {
		Name       string  `json:"name"`
		LowerBound float64 `json:"lowerBound"`
		Color      string  `json:"color"`
	} `json:"tiers"`
	RatingAverageByTeam bool                 `json:"ratingAverageByTeam"`
	RatingMin           float64              `json:"ratingMin"`
	RatingScheme        string               `json:"ratingScheme"`
	RatingElo           *remoteSchemeParams  `json:"ratingElo"`
	RatingMMR           *remoteSchemeParams  `json:"ratingMk8dxMmr"`
	MatchCount          int                  `json:"matchCount"`
	Matches             []remoteMatchSummary `json:"matches"`
}

type remoteSchemeParams struct {
	Initial        float64   `json:"initial"`
	ScalingFactors []float64 `json:"scalingFactors"`
	Baselines      []float64 `json:"baselines"`
}

func (p *remoteSchemeParams) toDomain() *domain.SchemeParams {
	if p == nil {
		return nil
	}
	return &domain.SchemeParams{
		Initial:        p.Initial,
		ScalingFactors: p.ScalingFactors,
		Baselines:      p.Baselines,
	}
}

type remoteMatchSummary struct {
	ID         string `json:"id"`
	TeamID     string `json:"teamId"`
	MatchData  string `json:"matchData"`
	CreateDate millis `json:"createDate"`
	PlayDate   millis `json:"playDate"`
}

type matchData struct {
	Title string `json:"title"`
	Teams []struct {
		Name    string `json:"name"`
		Tag     string `json:"tag"`
		Color   string `json:"color"`
		Players []struct {
			Name    string    `json:"name"`
			Flag    string    `json:"flag"`
			Scores  []float64 `json:"scores"`
			Penalty float64   `json:"penalty"`
		} `json:"players"`
	} `json:"teams"`
}

type skippedMatch struct {
	id  string
	err error
}

func (b *remoteBoard) toDomain(id string) (*domain.Board, []skippedMatch) {
	board := &domain.Board{
		ID:                  id,
		Name:                b.Name,
		RatingScheme:        domain.Scheme(b.RatingScheme),
		Elo:                 b.RatingElo.toDomain(),
		MMR:                 b.RatingMMR.toDomain(),
		RatingAverageByTeam: b.RatingAverageByTeam,
		RatingMin:           b.RatingMin,
		MatchCount:          b.MatchCount,
	}

	for _, p := range b.Players {
		bp := domain.BoardPlayer{Name: p.Name, Rating: p.Rating}
		if p.Ranking != nil {
			r := *p.Ranking + 1
			bp.Ranking = &r
		}
		board.Players = append(board.Players, bp)
	}
	slices.SortStableFunc(board.Players, func(x, y domain.BoardPlayer) int {
		return cmp.Compare(y.Rating, x.Rating)
	})

	for _, t := range b.Tiers {
		board.Tiers = append(board.Tiers, domain.BoardTier{Name: t.Name, LowerBound: t.LowerBound, Color: t.Color})
	}
	slices.SortStableFunc(board.Tiers, func(x, y domain.BoardTier) int {
		return cmp.Compare(x.LowerBound, y.LowerBound)
	})

	if b.MatchCount == 0 {
		return board, nil
	}
	var skipped []skippedMatch
	for _, rm := range b.Matches {
		m, err := convertMatch(rm, id)
		if err != nil {
			skipped = append(skipped, skippedMatch{id: rm.ID, err: err})
			continue
		}
		board.Matches = append(board.Matches, m)
	}
	return board, skipped
}

// convertMatch turns a scored board match into the same shape the table parser
// produces so the two can be compared.
func convertMatch(rm remoteMatchSummary, boardID string) (domain.Match, error) {
	var data matchData
	if err := json.Unmarshal([]byte(rm.MatchData), &data); err != nil {
		return domain.Match{}, fmt.Errorf("decode match data: %w", err)
	}
	if len(data.Teams) == 0 {
		return domain.Match{}, fmt.Errorf("match has no teams")
	}

	m := domain.Match{
		ID:       rm.ID,
		BoardID:  cmp.Or(rm.TeamID, boardID),
		PlayedAt: rm.PlayDate.Time,
		PostedAt: rm.CreateDate.Time,
	}

	first := data.Teams[0]
	source := first.Tag
	if data.Title != "" {
		source = data.Title
	}
	if n := lobbyNumberPattern.FindStringSubmatch(source); n != nil {
		m.LobbyNumber, _ = strconv.Atoi(n[1])
	}

	var (
		lobbyType domain.LobbyType
		ok        bool
	)
	switch {
	case data.Title != "":
		m.LobbyName = data.Title
		if parts := strings.Split(data.Title, " - "); len(parts) > 1 {
			lobbyType, ok = table.ParseLobbyType(parts[1])
		}
	case first.Tag != "" && first.Name != "":
		m.LobbyName = first.Name + " - " + first.Tag
		lobbyType, ok = table.ParseLobbyType(first.Name)
	}

	if !ok {
		players := 0
		for _, t := range data.Teams {
			players += len(t.Players)
		}
		for _, lt := range domain.BoardLobbyTypes(boardID) {
			if teams, size := lt.DefaultSize(); teams == len(data.Teams) && size == players {
				lobbyType, ok = lt, true
				break
			}
		}
	}
	if !ok {
		return domain.Match{}, fmt.Errorf("lobby type of %q is unknown", m.LobbyName)
	}
	m.LobbyType = lobbyType
	m.TeamMode = lobbyType.TeamMode()

	var teams []domain.Team
	for _, rt := range data.Teams {
		team := domain.Team{Name: cmp.Or(rt.Tag, rt.Name), Color: rt.Color}
		for _, rp := range rt.Players {
			p := domain.Player{
				Name:    rp.Name,
				Flag:    rp.Flag,
				Penalty: int(math.Abs(math.Round(rp.Penalty))),
			}
			for _, s := range rp.Scores {
				v := int(math.Round(s))
				p.Scores = append(p.Scores, v)
				p.Score += v
			}
			if !m.TeamMode {
				teams = append(teams, domain.Team{
					Name:    p.Name,
					Players: []domain.Player{p},
					Score:   p.Score,
					Penalty: p.Penalty,
				})
				continue
			}
			team.Players = append(team.Players, p)
			team.Score += p.Score
			team.Penalty += p.Penalty
		}
		if m.TeamMode {
			teams = append(teams, team)
		}
	}
	m.Teams = table.SortTeams(teams)
	return m, nil
}
