// Package boardfile loads a leaderboard snapshot and a backlog from YAML so
// tables can be resolved offline.
package boardfile

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ctrnf-scores/internal/domain"
	"ctrnf-scores/internal/rating"
	"ctrnf-scores/internal/table"
)

type File struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Rating      RatingConfig  `yaml:"rating"`
	Tiers       []TierConfig  `yaml:"tiers"`
	Players     []PlayerEntry `yaml:"players"`
	Matches     []ScoredMatch `yaml:"matches"`
	Submissions []Submission  `yaml:"submissions"`
}

type RatingConfig struct {
	Scheme         string    `yaml:"scheme"`
	Initial        float64   `yaml:"initial"`
	Min            float64   `yaml:"min"`
	AverageByTeam  bool      `yaml:"average_by_team"`
	ScalingFactors []float64 `yaml:"scaling_factors"`
	Baselines      []float64 `yaml:"baselines"`
}

type TierConfig struct {
	Name       string  `yaml:"name"`
	LowerBound float64 `yaml:"lower_bound"`
	Color      string  `yaml:"color"`
}

type PlayerEntry struct {
	Name   string  `yaml:"name"`
	Rating float64 `yaml:"rating"`
}

// ScoredMatch is a table already on the board, newest first.
type ScoredMatch struct {
	ID            string                `yaml:"id"`
	PlayedAt      time.Time             `yaml:"played_at"`
	Table         string                `yaml:"table"`
	RatingUpdates []RatingUpdate `yaml:"rating_updates"`
}

// RatingUpdate mirrors the board's record with 0-based rankings.
type RatingUpdate struct {
	Name          string  `yaml:"name"`
	RatingBefore  float64 `yaml:"rating_before"`
	RatingAfter   float64 `yaml:"rating_after"`
	RankingBefore int     `yaml:"ranking_before"`
	RankingAfter  int     `yaml:"ranking_after"`
	FirstMatch    bool    `yaml:"first_match"`
}

type Submission struct {
	PostedAt time.Time `yaml:"posted_at"`
	Author   string    `yaml:"author"`
	Table    string    `yaml:"table"`
}

// Fixture serves a loaded file as both the leaderboard and the submissions
// feed.
type Fixture struct {
	board       domain.Board
	updates     map[string][]domain.RatingUpdate
	submissions []domain.Submission
}

func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode board file: %w", err)
	}
	return New(f)
}

func New(f File) (*Fixture, error) {
	if f.ID == "" {
		return nil, fmt.Errorf("board id is required")
	}

	params := &domain.SchemeParams{
		Initial:        f.Rating.Initial,
		ScalingFactors: f.Rating.ScalingFactors,
		Baselines:      f.Rating.Baselines,
	}
	board := domain.Board{
		ID:                  f.ID,
		Name:                f.Name,
		RatingScheme:        domain.Scheme(f.Rating.Scheme),
		RatingAverageByTeam: f.Rating.AverageByTeam,
		RatingMin:           f.Rating.Min,
		MatchCount:          len(f.Matches),
	}
	switch board.RatingScheme {
	case domain.SchemeElo:
		board.Elo = params
	case domain.SchemeMMR:
		board.MMR = params
	}

	for _, t := range f.Tiers {
		board.Tiers = append(board.Tiers, domain.BoardTier{Name: t.Name, LowerBound: t.LowerBound, Color: t.Color})
	}
	for _, p := range f.Players {
		board.Players = append(board.Players, domain.BoardPlayer{Name: p.Name, Rating: p.Rating})
	}
	_, board.Players = rating.ApplyBoardRankings(nil, board.Players, nil)

	out := &Fixture{updates: make(map[string][]domain.RatingUpdate)}
	for i, sm := range f.Matches {
		m, err := table.Parse(sm.Table)
		if err != nil {
			return nil, fmt.Errorf("scored match %d: %w", i+1, err)
		}
		m.ID = sm.ID
		if m.ID == "" {
			m.ID = fmt.Sprintf("match-%d", i+1)
		}
		m.PlayedAt = sm.PlayedAt
		board.Matches = append(board.Matches, m)
		out.updates[m.ID] = nil
		for _, u := range sm.RatingUpdates {
			out.updates[m.ID] = append(out.updates[m.ID], domain.RatingUpdate(u))
		}
	}
	out.board = board

	for _, s := range f.Submissions {
		out.submissions = append(out.submissions, domain.Submission{
			Text:     s.Table,
			BoardID:  f.ID,
			Author:   s.Author,
			PostedAt: s.PostedAt,
		})
	}
	return out, nil
}

func (f *Fixture) GetBoard(_ context.Context, id string) (*domain.Board, error) {
	if id != f.board.ID {
		return nil, fmt.Errorf("%w: board %s is not in the fixture", domain.ErrRemoteUnavailable, id)
	}
	b := f.board
	return &b, nil
}

func (f *Fixture) GetMatchRatingUpdates(_ context.Context, matchID string) ([]domain.RatingUpdate, error) {
	updates, ok := f.updates[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: match %s is not in the fixture", domain.ErrRemoteUnavailable, matchID)
	}
	return updates, nil
}

func (f *Fixture) RecentSubmissions(context.Context) ([]domain.Submission, error) {
	return f.submissions, nil
}
