package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"ctrnf-scores/internal/config"
	"ctrnf-scores/internal/constants"
	"ctrnf-scores/internal/domain"
	"ctrnf-scores/internal/metrics"
)

const boardQuery = `{ team(teamId:%q) { name, players { name, rating, ranking }, tiers { name, lowerBound, color }, ` +
	`ratingAverageByTeam, ratingMin, ratingScheme, ratingElo { initial, scalingFactors }, ` +
	`ratingMk8dxMmr { initial, scalingFactors, baselines }, matchCount, ` +
	`matches (skip: 0, count: %d) { id, teamId, matchData, createDate, playDate } } }`

const ratingUpdatesQuery = `{ teamMatch(teamMatchId:%q) { ratingUpdates { name, rankingBefore, rankingAfter, ratingBefore, ratingAfter, firstMatch } } }`

// LeaderboardClient talks to the game boards GraphQL endpoint.
type LeaderboardClient struct {
	url     string
	client  *fasthttp.Client
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewLeaderboardClient(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *LeaderboardClient {
	limit := rate.Inf
	if cfg.APIRateLimit > 0 {
		limit = rate.Limit(cfg.APIRateLimit)
	}
	return &LeaderboardClient{
		url: cfg.LeaderboardAPIURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(limit, 1),
		metrics: m,
		logger:  logger.With().Str("component", "leaderboard").Logger(),
	}
}

type graphQLResponse[T any] struct {
	Data   *T `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type boardData struct {
	Team *remoteBoard `json:"team"`
}

type ratingUpdatesData struct {
	TeamMatch *struct {
		RatingUpdates []domain.RatingUpdate `json:"ratingUpdates"`
	} `json:"teamMatch"`
}

// GetBoard fetches the board snapshot with its latest scored matches. Matches
// whose data cannot be read are skipped.
func (c *LeaderboardClient) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	start := time.Now()
	data, err := doRequest[boardData](ctx, c, fmt.Sprintf(boardQuery, id, constants.BoardMatchHistory))
	c.observe("get_board", start, err)
	if err != nil {
		return nil, err
	}
	if data.Team == nil {
		return nil, fmt.Errorf("%w: board %s not found", domain.ErrRemoteUnavailable, id)
	}

	board, skipped := data.Team.toDomain(id)
	for _, s := range skipped {
		c.logger.Debug().Str("board_id", id).Str("match_id", s.id).Err(s.err).Msg("skipping unreadable board match")
	}
	c.logger.Debug().
		Str("board_id", id).
		Int("players", len(board.Players)).
		Int("matches", len(board.Matches)).
		Dur("duration", time.Since(start)).
		Msg("board fetched")
	return board, nil
}

func (c *LeaderboardClient) GetMatchRatingUpdates(ctx context.Context, matchID string) ([]domain.RatingUpdate, error) {
	start := time.Now()
	data, err := doRequest[ratingUpdatesData](ctx, c, fmt.Sprintf(ratingUpdatesQuery, matchID))
	c.observe("get_match_rating_updates", start, err)
	if err != nil {
		return nil, err
	}
	if data.TeamMatch == nil {
		return nil, fmt.Errorf("%w: match %s not found", domain.ErrRemoteUnavailable, matchID)
	}
	return data.TeamMatch.RatingUpdates, nil
}

func (c *LeaderboardClient) observe(operation string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.RemoteDuration.WithLabelValues(operation, metrics.Outcome(err)).Observe(time.Since(start).Seconds())
}

func doRequest[T any](ctx context.Context, client *LeaderboardClient, query string) (*T, error) {
	if err := client.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("text/plain")
	req.SetBodyString(query)

	deadline := time.Now().Add(constants.ExternalAPITimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := client.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: API error: %d", domain.ErrRemoteUnavailable, resp.StatusCode())
	}

	var result graphQLResponse[T]
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrRemoteUnavailable, strings.Join(msgs, "; "))
	}
	if result.Data == nil {
		return nil, fmt.Errorf("%w: empty response", domain.ErrRemoteUnavailable)
	}
	return result.Data, nil
}
