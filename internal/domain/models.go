package domain

import (
	"time"
)

type Player struct {
	Name           string
	Flag           string
	Scores         []int
	Score          int // sum of Scores
	Penalty        int // positive is a deduction, negative a bonus
	BoardRating    float64
	InTeamPosition int
	Position       int
}

// Points is the score used for ranking and match outcomes.
func (p Player) Points() int {
	return p.Score - p.Penalty
}

type Team struct {
	Name        string
	Color       string
	Players     []Player
	Score       int
	Penalty     int
	TableOrder  int
	PlayerOrder []string // player names in the order they were typed
	Position    int
}

func (t Team) Points() int {
	return t.Score - t.Penalty
}

func (t Team) Clone() Team {
	out := t
	out.Players = make([]Player, len(t.Players))
	for i, p := range t.Players {
		cp := p
		cp.Scores = append([]int(nil), p.Scores...)
		out.Players[i] = cp
	}
	out.PlayerOrder = append([]string(nil), t.PlayerOrder...)
	return out
}

type Match struct {
	ID          string // remote match id, empty for parsed tables
	BoardID     string
	LobbyNumber int
	LobbyName   string
	LobbyType   LobbyType
	TeamMode    bool
	Teams       []Team
	Template    string
	PlayedAt    time.Time // remote matches
	PostedAt    time.Time // backlog submissions
}

// Clone returns a deep copy so callers can attach computed fields without
// touching the parsed snapshot.
func (m Match) Clone() Match {
	out := m
	out.Teams = make([]Team, len(m.Teams))
	for i, t := range m.Teams {
		out.Teams[i] = t.Clone()
	}
	return out
}

// WithBoardRatings returns a copy of the match with every player's board rating
// taken from ratings. Players missing from ratings keep fallback.
func (m Match) WithBoardRatings(ratings map[string]float64, fallback float64) Match {
	out := m.Clone()
	for i := range out.Teams {
		for j := range out.Teams[i].Players {
			p := &out.Teams[i].Players[j]
			if r, ok := ratings[p.Name]; ok {
				p.BoardRating = r
			} else {
				p.BoardRating = fallback
			}
		}
	}
	return out
}

// Date is when the match was played, falling back to when it was posted.
func (m Match) Date() time.Time {
	if !m.PlayedAt.IsZero() {
		return m.PlayedAt
	}
	return m.PostedAt
}

func (m Match) PlayerNames() []string {
	var names []string
	for _, t := range m.Teams {
		for _, p := range t.Players {
			names = append(names, p.Name)
		}
	}
	return names
}

func (m Match) PlayerCount() int {
	n := 0
	for _, t := range m.Teams {
		n += len(t.Players)
	}
	return n
}

type Scheme string

const (
	SchemeElo Scheme = "elo"
	SchemeMMR Scheme = "mk8dx_mmr"
)

type RatingSettings struct {
	Scheme         Scheme
	Initial        float64
	MinRating      float64
	AverageByTeam  bool
	ScalingFactors []float64 // indexed by Category
	Baselines      []float64 // mk8dx_mmr only
}

type BoardTier struct {
	Name       string
	LowerBound float64
	Color      string
}

type BoardPlayer struct {
	Name    string
	Rating  float64
	Ranking *int // 1-based
}

type SchemeParams struct {
	Initial        float64
	ScalingFactors []float64
	Baselines      []float64
}

type Board struct {
	ID                  string
	Name                string
	Players             []BoardPlayer // rating desc
	Tiers               []BoardTier   // lower bound asc
	RatingScheme        Scheme
	Elo                 *SchemeParams
	MMR                 *SchemeParams
	RatingAverageByTeam bool
	RatingMin           float64
	MatchCount          int
	Matches             []Match // newest first
}

// RatingSettings derives the calculator settings for the board's scheme.
func (b Board) RatingSettings() (RatingSettings, bool) {
	var params *SchemeParams
	switch b.RatingScheme {
	case SchemeElo:
		params = b.Elo
	case SchemeMMR:
		params = b.MMR
	}
	if params == nil {
		return RatingSettings{}, false
	}
	return RatingSettings{
		Scheme:         b.RatingScheme,
		Initial:        params.Initial,
		MinRating:      b.RatingMin,
		AverageByTeam:  b.RatingAverageByTeam,
		ScalingFactors: append([]float64(nil), params.ScalingFactors...),
		Baselines:      append([]float64(nil), params.Baselines...),
	}, true
}

// LatestMatch returns the most recently scored match on the board.
func (b Board) LatestMatch() (Match, bool) {
	if b.MatchCount == 0 || len(b.Matches) == 0 {
		return Match{}, false
	}
	return b.Matches[0], true
}

type RatingUpdate struct {
	Name          string  `json:"name"`
	RatingBefore  float64 `json:"ratingBefore"`
	RatingAfter   float64 `json:"ratingAfter"`
	RankingBefore int     `json:"rankingBefore"` // 0-based, negative when unknown
	RankingAfter  int     `json:"rankingAfter"`
	FirstMatch    bool    `json:"firstMatch"`
}

type Submission struct {
	ID          string
	Text        string
	Template    string
	BoardID     string
	LobbyNumber int
	Author      string
	PostedAt    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Body returns the text used when replaying the submission.
func (s Submission) Body() string {
	if s.Template != "" {
		return s.Template
	}
	return s.Text
}

type MatchResult struct {
	Name            string
	Team            string
	OriginalRanking *int
	FinalRanking    *int
	OriginalRating  float64
	Delta           float64
	FinalRating     float64
	OriginalTier    string
	FinalTier       string
	TeamPosition    int
	InTeamPosition  int
	Position        int
}

// ResultFor looks a player up by name.
func ResultFor(results []MatchResult, name string) (MatchResult, bool) {
	for _, r := range results {
		if r.Name == name {
			return r, true
		}
	}
	return MatchResult{}, false
}
