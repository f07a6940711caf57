package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ctrnf-scores/internal/constants"
	"ctrnf-scores/internal/domain"
)

type SubmissionStore interface {
	Create(ctx context.Context, s *domain.Submission) error
	Delete(ctx context.Context, id string) error
}

// SubmissionService takes tables posted for scoring. Every accepted table joins
// the backlog that later predictions replay.
type SubmissionService struct {
	store    SubmissionStore
	resolver *ResolutionService
	logger   zerolog.Logger
}

func NewSubmissionService(store SubmissionStore, resolver *ResolutionService, logger zerolog.Logger) *SubmissionService {
	return &SubmissionService{store: store, resolver: resolver, logger: logger}
}

// Submit stores text as posted by author and resolves it. Tables that fail to
// parse are not stored. A stored table stays in the backlog even when its
// resolution fails.
func (s *SubmissionService) Submit(ctx context.Context, text, author string) (*domain.Submission, *Resolution, error) {
	match, err := s.resolver.Parse(text)
	if err != nil {
		s.logger.Debug().Err(err).Str("author", author).Msg("rejected submission")
		return nil, nil, err
	}

	sub := &domain.Submission{
		Text:        text,
		Template:    match.Template,
		BoardID:     match.BoardID,
		LobbyNumber: match.LobbyNumber,
		Author:      author,
		PostedAt:    time.Now().UTC(),
	}

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	if err := s.store.Create(dbCtx, sub); err != nil {
		s.logger.Error().Err(err).Str("board_id", sub.BoardID).Int("lobby_number", sub.LobbyNumber).Msg("failed to store submission")
		return nil, nil, fmt.Errorf("failed to store submission: %w", err)
	}

	s.logger.Info().
		Str("id", sub.ID).
		Str("board_id", sub.BoardID).
		Int("lobby_number", sub.LobbyNumber).
		Str("author", author).
		Msg("submission accepted")

	res, err := s.resolver.Resolve(ctx, text)
	if err != nil {
		return sub, nil, err
	}
	return sub, res, nil
}

// Withdraw removes a submission posted by mistake.
func (s *SubmissionService) Withdraw(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("failed to withdraw submission")
		return err
	}
	s.logger.Info().Str("id", id).Msg("submission withdrawn")
	return nil
}
