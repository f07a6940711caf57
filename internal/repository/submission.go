package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"ctrnf-scores/internal/config"
	"ctrnf-scores/internal/domain"
)

var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionRepository stores posted results tables. The most recent of them
// form the backlog that is replayed when predicting ratings.
type SubmissionRepository struct {
	db     *sql.DB
	window int
	logger zerolog.Logger
}

func NewSubmissionRepository(sqlDB *sql.DB, cfg *config.Config, logger zerolog.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     sqlDB,
		window: cfg.SubmissionWindow,
		logger: logger,
	}
}

const submissionColumns = `id, board_id, lobby_number, text, template, author, posted_at, created_at, updated_at`

const insertSubmission = `INSERT INTO submissions (` + submissionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SubmissionRepository) insert(ctx context.Context, ex execer, s *domain.Submission) error {
	now := time.Now().UTC()
	if s.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		s.ID = id
	}
	if s.PostedAt.IsZero() {
		s.PostedAt = now
	}
	s.PostedAt = s.PostedAt.UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	_, err := ex.ExecContext(ctx, insertSubmission,
		s.ID, s.BoardID, s.LobbyNumber, s.Text, s.Template, s.Author, s.PostedAt, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// Create stores s, filling its id and timestamps.
func (r *SubmissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	if err := r.insert(ctx, r.db, s); err != nil {
		r.logger.Error().Err(err).Str("board_id", s.BoardID).Int("lobby_number", s.LobbyNumber).Msg("failed to create submission")
		return err
	}
	r.logger.Debug().Str("id", s.ID).Str("board_id", s.BoardID).Int("lobby_number", s.LobbyNumber).Msg("submission stored")
	return nil
}

func (r *SubmissionRepository) CreateBatch(ctx context.Context, submissions []domain.Submission) error {
	if len(submissions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range submissions {
		if err := r.insert(ctx, tx, &submissions[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SubmissionRepository) Get(ctx context.Context, id string) (*domain.Submission, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return s, nil
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
	}
	r.logger.Debug().Str("id", id).Msg("submission deleted")
	return nil
}

// RecentSubmissions returns the latest submissions, oldest first.
func (r *SubmissionRepository) RecentSubmissions(ctx context.Context) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions ORDER BY posted_at DESC, created_at DESC LIMIT ?`, r.window)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	slices.Reverse(out)
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*domain.Submission, error) {
	var s domain.Submission
	err := row.Scan(&s.ID, &s.BoardID, &s.LobbyNumber, &s.Text, &s.Template, &s.Author, &s.PostedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
