// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/models"
)

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the durable record of polls, options and accepted votes.
type Store struct {
	db           *sql.DB
	databaseType string
}

func New(db *sql.DB, databaseType string) *Store {
	return &Store{db: db, databaseType: databaseType}
}

// BeginTx starts a transaction at read committed or stronger.
// SQLite transactions are serializable and take no isolation option.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	var opts *sql.TxOptions
	if s.databaseType == cliparse.DatabasePostgres {
		opts = &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	return s.db.BeginTx(ctx, opts)
}

// CreatePoll inserts a poll and its options as one batch and returns the
// new poll ID. Options keep the order they are given in.
func (s *Store) CreatePoll(ctx context.Context, question string, options []string) (string, error) {
	// A generated ID that collides with an existing poll is regenerated,
	// never reused
	for attempt := 0; attempt < 3; attempt++ {
		pollID, err := auth.GeneratePollID()
		if err != nil {
			return "", err
		}

		err = s.insertPoll(ctx, pollID, question, options)
		if err == nil {
			return pollID, nil
		}
		if !IsUniqueViolation(err) {
			return "", err
		}
		slog.Warn("poll id collision, regenerating", "poll_id", pollID)
	}

	return "", errors.New("failed to allocate a unique poll id")
}

func (s *Store) insertPoll(ctx context.Context, pollID, question string, options []string) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, question, created_at)
		VALUES ($1, $2, $3)
	`, pollID, question, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	for i, text := range options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO option (poll_id, sort_order, text, vote_count)
			VALUES ($1, $2, $3, 0)
		`, pollID, i, text)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit poll: %w", err)
	}
	return nil
}

// GetPoll returns the poll with its options in creation order and their
// current counts. Counts are read as stored, never recomputed.
func (s *Store) GetPoll(ctx context.Context, pollID string) (models.PollWithOptions, error) {
	var poll models.PollWithOptions
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question, created_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(&poll.ID, &poll.Question, &poll.CreatedAt)
	if err == sql.ErrNoRows {
		return models.PollWithOptions{}, ErrPollNotFound
	}
	if err != nil {
		return models.PollWithOptions{}, fmt.Errorf("failed to query poll: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poll_id, sort_order, text, vote_count
		FROM option
		WHERE poll_id = $1
		ORDER BY sort_order, id
	`, pollID)
	if err != nil {
		return models.PollWithOptions{}, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	poll.Options = []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Position, &opt.Text, &opt.Count); err != nil {
			return models.PollWithOptions{}, fmt.Errorf("failed to scan option: %w", err)
		}
		poll.Options = append(poll.Options, opt)
	}
	if err := rows.Err(); err != nil {
		return models.PollWithOptions{}, fmt.Errorf("failed to read options: %w", err)
	}

	return poll, nil
}

// PollExists checks for a poll inside the caller's transaction
func PollExists(ctx context.Context, q Querier, pollID string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM poll WHERE id = $1)
	`, pollID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check poll: %w", err)
	}
	return exists, nil
}

// OptionPollID returns the poll an option belongs to
func OptionPollID(ctx context.Context, q Querier, optionID int64) (string, error) {
	var pollID string
	err := q.QueryRowContext(ctx, `
		SELECT poll_id FROM option WHERE id = $1
	`, optionID).Scan(&pollID)
	if err == sql.ErrNoRows {
		return "", ErrOptionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query option: %w", err)
	}
	return pollID, nil
}

// HasVoteByToken is the advisory check for the per-token rule
func HasVoteByToken(ctx context.Context, q Querier, pollID, voterToken string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE poll_id = $1 AND voter_token = $2
		)
	`, pollID, voterToken).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check voter token: %w", err)
	}
	return exists, nil
}

// HasVoteByIPHash is the advisory check for the per-address rule
func HasVoteByIPHash(ctx context.Context, q Querier, pollID, ipHash string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE poll_id = $1 AND ip_hash = $2
		)
	`, pollID, ipHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check source address: %w", err)
	}
	return exists, nil
}

// InsertVote appends a vote. The schema's unique and foreign key
// constraints are authoritative: violations come back as ErrDuplicateVote
// and ErrOptionMismatch.
func InsertVote(ctx context.Context, q Querier, v models.Vote) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO vote (id, poll_id, option_id, voter_token, ip_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, v.PollID, v.OptionID, v.VoterToken, v.IPHash, v.CreatedAt)

	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrDuplicateVote, err)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", ErrOptionMismatch, err)
	default:
		return fmt.Errorf("failed to insert vote: %w", err)
	}
}

// AddToCount adds delta to the stored count in a single statement and
// returns the value after the write.
func AddToCount(ctx context.Context, q Querier, pollID string, optionID, delta int64) (int64, error) {
	var newCount int64
	err := q.QueryRowContext(ctx, `
		UPDATE option
		SET vote_count = vote_count + $1
		WHERE id = $2 AND poll_id = $3
		RETURNING vote_count
	`, delta, optionID, pollID).Scan(&newCount)
	if err == sql.ErrNoRows {
		return 0, ErrOptionMismatch
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update option count: %w", err)
	}
	return newCount, nil
}

// Drift is an option whose cached count disagrees with its vote rows
type Drift struct {
	OptionID int64
	Cached   int64
	Actual   int64
}

// CountDrift recounts votes per option for a poll and returns every option
// whose cached count differs. This scans the ledger and is meant for audits,
// not for serving reads.
func (s *Store) CountDrift(ctx context.Context, pollID string) ([]Drift, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.vote_count, COUNT(v.id)
		FROM option o
		LEFT JOIN vote v ON v.option_id = o.id AND v.poll_id = o.poll_id
		WHERE o.poll_id = $1
		GROUP BY o.id, o.vote_count, o.sort_order
		ORDER BY o.sort_order
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to recount votes: %w", err)
	}
	defer rows.Close()

	var drift []Drift
	for rows.Next() {
		var d Drift
		if err := rows.Scan(&d.OptionID, &d.Cached, &d.Actual); err != nil {
			return nil, fmt.Errorf("failed to scan recount: %w", err)
		}
		if d.Cached != d.Actual {
			drift = append(drift, d)
		}
	}
	return drift, rows.Err()
}
