package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"ctrnf-scores/internal/constants"
	"ctrnf-scores/internal/domain"
	"ctrnf-scores/internal/metrics"
	"ctrnf-scores/internal/rating"
	"ctrnf-scores/internal/table"
)

type LeaderboardClient interface {
	GetBoard(ctx context.Context, id string) (*domain.Board, error)
	GetMatchRatingUpdates(ctx context.Context, matchID string) ([]domain.RatingUpdate, error)
}

// SubmissionFeed lists recently posted tables, oldest first.
type SubmissionFeed interface {
	RecentSubmissions(ctx context.Context) ([]domain.Submission, error)
}

// Resolution is the outcome of resolving one table. Submitted results come
// from the board itself; otherwise they are a prediction made after replaying
// Replayed matches, the last of which is the table.
type Resolution struct {
	Match     domain.Match
	Results   []domain.MatchResult
	Submitted bool
	MatchID   string
	Replayed  int
	Board     []domain.BoardPlayer
}

type ResolutionService struct {
	leaderboard LeaderboardClient
	feed        SubmissionFeed
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      zerolog.Logger
}

func NewResolutionService(leaderboard LeaderboardClient, feed SubmissionFeed, m *metrics.Metrics, tracer trace.Tracer, logger zerolog.Logger) *ResolutionService {
	return &ResolutionService{
		leaderboard: leaderboard,
		feed:        feed,
		metrics:     m,
		tracer:      tracer,
		logger:      logger,
	}
}

// Resolve parses text and produces the rating changes to show for it.
func (s *ResolutionService) Resolve(ctx context.Context, text string) (*Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "ResolutionService.Resolve")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	res, err := s.resolve(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.countResolution("error")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("board_id", res.Match.BoardID),
		attribute.Int("lobby_number", res.Match.LobbyNumber),
		attribute.Bool("submitted", res.Submitted),
		attribute.Int("replayed", res.Replayed),
	)
	if res.Submitted {
		s.countResolution("submitted")
	} else {
		s.countResolution("predicted")
	}
	return res, nil
}

func (s *ResolutionService) resolve(ctx context.Context, text string) (*Resolution, error) {
	match, err := s.Parse(text)
	if err != nil {
		return nil, err
	}
	log := s.logger.With().Str("board_id", match.BoardID).Int("lobby_number", match.LobbyNumber).Logger()

	board, backlog, err := s.fetch(ctx, match.BoardID)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch board state")
		return nil, err
	}

	if res, err := s.resolveSubmitted(ctx, match, board); res != nil || err != nil {
		if err != nil {
			log.Error().Err(err).Msg("failed to resolve submitted match")
			return nil, err
		}
		log.Info().Str("match_id", res.MatchID).Msg("table already scored on the board")
		return res, nil
	}

	res, err := s.predict(ctx, match, board, backlog)
	if err != nil {
		log.Warn().Err(err).Msg("failed to predict match")
		return nil, err
	}
	log.Info().Int("replayed", res.Replayed).Msg("table predicted")
	return res, nil
}

// Parse parses a table and records the outcome.
func (s *ResolutionService) Parse(text string) (domain.Match, error) {
	var m domain.Match
	var err error
	if len(text) > constants.MaxTableLength {
		err = fmt.Errorf("%w: table exceeds %d bytes", domain.ErrParse, constants.MaxTableLength)
	} else {
		m, err = table.Parse(text)
	}
	if s.metrics != nil {
		s.metrics.TablesParsed.WithLabelValues(metrics.Outcome(err)).Inc()
	}
	return m, err
}

func (s *ResolutionService) fetch(ctx context.Context, boardID string) (*domain.Board, []domain.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "ResolutionService.fetch")
	defer span.End()

	g, gCtx := errgroup.WithContext(ctx)
	var board *domain.Board
	var backlog []domain.Submission

	g.Go(func() error {
		var err error
		board, err = s.leaderboard.GetBoard(gCtx, boardID)
		if err != nil && !errors.Is(err, domain.ErrRemoteUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
		}
		return err
	})

	g.Go(func() error {
		var err error
		backlog, err = s.feed.RecentSubmissions(gCtx)
		if err != nil {
			return fmt.Errorf("%w: submissions feed: %v", domain.ErrRemoteUnavailable, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	return board, backlog, nil
}

// resolveSubmitted returns nil without an error when the board has not scored
// the table yet.
func (s *ResolutionService) resolveSubmitted(ctx context.Context, match domain.Match, board *domain.Board) (*Resolution, error) {
	var scored *domain.Match
	for i := range board.Matches {
		if board.Matches[i].LobbyNumber == match.LobbyNumber && domain.MatchesEqual(board.Matches[i], match) {
			scored = &board.Matches[i]
			break
		}
	}
	if scored == nil {
		return nil, nil
	}

	ctx, span := s.tracer.Start(ctx, "ResolutionService.resolveSubmitted", trace.WithAttributes(attribute.String("match_id", scored.ID)))
	defer span.End()

	updates, err := s.leaderboard.GetMatchRatingUpdates(ctx, scored.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrRemoteUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
		}
		return nil, err
	}

	// the board's rating updates carry the deltas, only its tiers are needed
	results, err := rating.NewCalculator(domain.RatingSettings{}, board.Tiers).CalculateSubmitted(*scored, updates)
	if err != nil {
		return nil, err
	}

	match.LobbyType = scored.LobbyType
	match.LobbyName = scored.LobbyName
	return &Resolution{
		Match:     match,
		Results:   results,
		Submitted: true,
		MatchID:   scored.ID,
	}, nil
}

type candidate struct {
	match     domain.Match
	requested bool
}

func (s *ResolutionService) predict(ctx context.Context, match domain.Match, board *domain.Board, backlog []domain.Submission) (*Resolution, error) {
	_, span := s.tracer.Start(ctx, "ResolutionService.predict")
	defer span.End()

	candidates := s.unscoredMatches(match, board, backlog)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: lobby %d", domain.ErrResolutionNotFound, match.LobbyNumber)
	}

	settings, ok := board.RatingSettings()
	if !ok {
		return nil, fmt.Errorf("%w: board %s uses unsupported rating scheme %q", domain.ErrValidation, board.ID, board.RatingScheme)
	}
	calc := rating.NewCalculator(settings, board.Tiers)

	state := replayState{
		ratings: seedRatings(candidates, board.Players, settings.Initial),
		board:   board.Players,
	}
	for i, c := range candidates {
		results, err := calc.Calculate(c.match.WithBoardRatings(state.ratings, settings.Initial))
		if err != nil {
			return nil, fmt.Errorf("lobby %d (%s): %w", c.match.LobbyNumber, c.match.LobbyType, err)
		}
		state = state.fold(results)

		if c.requested {
			span.SetAttributes(attribute.Int("replayed", i+1))
			if s.metrics != nil {
				s.metrics.ReplayLength.Observe(float64(i + 1))
			}
			return &Resolution{
				Match:    c.match,
				Results:  state.results,
				Replayed: i + 1,
				Board:    state.board,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: lobby %d was dropped from the backlog", domain.ErrResolutionNotFound, match.LobbyNumber)
}

var anySpace = regexp.MustCompile(`\s`)

// unscoredMatches lists, in replay order, the backlog tables posted after the
// board's latest scored match and up to the requested table, followed by the
// table itself, with duplicates of the same lobby removed.
func (s *ResolutionService) unscoredMatches(match domain.Match, board *domain.Board, backlog []domain.Submission) []candidate {
	type parsed struct {
		match domain.Match
		ok    bool
	}
	cache := make(map[string]parsed, len(backlog))
	parse := func(sub domain.Submission) (string, domain.Match, bool) {
		body := sub.Body()
		key := anySpace.ReplaceAllString(body, " ")
		p, hit := cache[key]
		if !hit {
			m, err := table.Parse(body)
			p = parsed{match: m, ok: err == nil}
			cache[key] = p
		}
		m := p.match.Clone()
		m.PostedAt = sub.PostedAt
		return key, m, p.ok
	}

	latest, hasLatest := board.LatestMatch()

	var upper time.Time
	for _, sub := range backlog {
		if _, m, ok := parse(sub); ok && domain.MatchesEqual(match, m) {
			upper = sub.PostedAt
			break
		}
	}

	seen := make(map[string]struct{}, len(backlog))
	var pending []domain.Match
	for _, sub := range backlog {
		key, m, ok := parse(sub)
		switch {
		case !ok:
			continue
		case hasKey(seen, key):
			continue
		case m.BoardID != match.BoardID:
			continue
		case hasLatest && domain.MatchesEqual(m, latest):
			continue
		case domain.MatchesEqual(m, match):
			continue
		case hasLatest && sub.PostedAt.Before(latest.Date()):
			continue
		case !upper.IsZero() && sub.PostedAt.After(upper):
			continue
		}
		seen[key] = struct{}{}
		pending = append(pending, m)
	}

	all := make([]candidate, 0, len(pending)+1)
	for _, m := range pending {
		all = append(all, candidate{match: m})
	}
	all = append(all, candidate{match: match, requested: true})

	var order []int
	groups := make(map[int][]candidate)
	for _, c := range all {
		n := c.match.LobbyNumber
		if _, ok := groups[n]; !ok {
			order = append(order, n)
		}
		groups[n] = append(groups[n], c)
	}

	var out []candidate
	for _, n := range order {
		g := dropRepeats(groups[n], domain.MatchesEqual)
		g = dropRepeats(g, domain.MatchesDuplicated)
		out = append(out, g...)
	}

	s.logger.Debug().
		Int("backlog", len(backlog)).
		Int("pending", len(pending)).
		Int("candidates", len(out)).
		Time("lower_bound", latest.Date()).
		Time("upper_bound", upper).
		Msg("backlog filtered")
	return out
}

// dropRepeats removes every entry that a later entry of the group repeats, so
// the last posted version of a lobby wins.
func dropRepeats(group []candidate, same func(a, b domain.Match) bool) []candidate {
	removed := make([]bool, len(group))
	for i := range group {
		for j := i + 1; j < len(group); j++ {
			if !removed[j] && same(group[i].match, group[j].match) {
				removed[i] = true
				break
			}
		}
	}
	out := make([]candidate, 0, len(group))
	for i, c := range group {
		if !removed[i] {
			out = append(out, c)
		}
	}
	return out
}

func hasKey(m map[string]struct{}, key string) bool {
	_, ok := m[key]
	return ok
}

func seedRatings(candidates []candidate, players []domain.BoardPlayer, initial float64) map[string]float64 {
	ratings := make(map[string]float64)
	for _, c := range candidates {
		for _, name := range c.match.PlayerNames() {
			ratings[name] = initial
		}
	}
	for _, p := range players {
		if _, ok := ratings[p.Name]; ok {
			ratings[p.Name] = p.Rating
		}
	}
	return ratings
}

// replayState is the simulated leaderboard carried from one replayed match to
// the next.
type replayState struct {
	ratings map[string]float64
	board   []domain.BoardPlayer
	results []domain.MatchResult
}

func (s replayState) fold(results []domain.MatchResult) replayState {
	known := make(map[string]struct{}, len(s.board))
	for _, p := range s.board {
		known[p.Name] = struct{}{}
	}
	var newPlayers []string
	for _, r := range results {
		if _, ok := known[r.Name]; !ok {
			newPlayers = append(newPlayers, r.Name)
		}
	}

	board := rating.ApplyBoardRatings(results, s.board)
	ranked, board := rating.ApplyBoardRankings(results, board, newPlayers)

	ratings := maps.Clone(s.ratings)
	for _, r := range results {
		ratings[r.Name] = r.FinalRating
	}
	return replayState{ratings: ratings, board: board, results: ranked}
}

func (s *ResolutionService) countResolution(outcome string) {
	if s.metrics != nil {
		s.metrics.Resolutions.WithLabelValues(outcome).Inc()
	}
}
