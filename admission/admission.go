// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/ledger"
	"github.com/danielhkuo/livepoll/models"
)

// Reason explains a rejected vote
type Reason string

const (
	ReasonNotFound      Reason = "NotFound"
	ReasonInvalidOption Reason = "InvalidOption"
	ReasonDuplicate     Reason = "Duplicate"
)

// maxAttempts bounds how often a transaction is rerun after a retryable
// storage error
const maxAttempts = 3

// ErrIntegrityViolation means the store refused a vote whose option is not
// part of the poll after the checks had passed. The vote is not recorded.
var ErrIntegrityViolation = errors.New("integrity violation: option does not belong to poll")

// ValidationError is malformed input caught before any storage access
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Result is the outcome of one vote attempt. NewCount is set only when
// Accepted is true; Reason only when it is false.
type Result struct {
	Accepted bool
	NewCount int64
	Reason   Reason
}

// Publisher receives one event per accepted vote. It must not block.
type Publisher interface {
	Publish(update models.VoteUpdate) int
}

// Controller decides and records vote attempts.
type Controller struct {
	store     *ledger.Store
	publisher Publisher
	ipSalt    string
	txTimeout time.Duration

	// beforeInsert runs inside the transaction once the checks have passed,
	// just before the vote row is written. nil outside tests.
	beforeInsert func(ctx context.Context, tx *sql.Tx, vote models.Vote) error
}

func NewController(store *ledger.Store, publisher Publisher, cfg cliparse.Config) *Controller {
	txTimeout := cfg.TxTimeout
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &Controller{
		store:     store,
		publisher: publisher,
		ipSalt:    cfg.IPHashSalt,
		txTimeout: txTimeout,
	}
}

// SubmitVote admits or rejects one vote. Rejections are returned as a
// Result with a Reason and a nil error; a non-nil error is either a
// *ValidationError, ErrIntegrityViolation, or a storage failure that is
// safe to retry.
func (c *Controller) SubmitVote(ctx context.Context, pollID string, optionID int64, voterToken, sourceAddress string) (Result, error) {
	pollID = strings.TrimSpace(pollID)
	voterToken = strings.TrimSpace(voterToken)

	if err := validate(pollID, optionID, voterToken); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	vote := models.Vote{
		ID:         uuid.NewString(),
		PollID:     pollID,
		OptionID:   optionID,
		VoterToken: voterToken,
		CreatedAt:  time.Now().UTC(),
	}
	if addr := strings.TrimSpace(sourceAddress); addr != "" {
		ipHash := auth.HashIP(addr, c.ipSalt)
		vote.IPHash = &ipHash
	}

	// Once begun, the transaction runs to commit or rollback even if the
	// caller goes away; only the timeout bounds it
	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.txTimeout)
	defer cancel()

	var res Result
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err = c.admit(txCtx, vote)
		if err == nil || !ledger.IsRetryable(err) {
			break
		}
		slog.Warn("vote transaction contended, retrying",
			"poll_id", pollID, "attempt", attempt, "error", err)
	}
	if err != nil {
		if errors.Is(err, ErrIntegrityViolation) {
			slog.Error("vote refused by storage integrity check",
				"poll_id", pollID, "option_id", optionID, "error", err)
		}
		return Result{}, err
	}

	if !res.Accepted {
		slog.Warn("vote rejected", "poll_id", pollID, "option_id", optionID, "reason", res.Reason)
		return res, nil
	}

	slog.Info("vote accepted", "poll_id", pollID, "option_id", optionID, "new_count", res.NewCount)

	if c.publisher != nil {
		c.publisher.Publish(models.VoteUpdate{
			PollID:   pollID,
			OptionID: optionID,
			NewCount: res.NewCount,
		})
	}

	return res, nil
}

// admit runs the checks and the write in one transaction
func (c *Controller) admit(ctx context.Context, vote models.Vote) (Result, error) {
	tx, err := c.store.BeginTx(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Poll exists
	exists, err := ledger.PollExists(ctx, tx, vote.PollID)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		return rejected(ReasonNotFound), nil
	}

	// 2. Option exists and belongs to the poll
	owner, err := ledger.OptionPollID(ctx, tx, vote.OptionID)
	if errors.Is(err, ledger.ErrOptionNotFound) {
		return rejected(ReasonInvalidOption), nil
	}
	if err != nil {
		return Result{}, err
	}
	if owner != vote.PollID {
		slog.Warn("vote names an option of another poll",
			"poll_id", vote.PollID, "option_id", vote.OptionID, "option_poll_id", owner)
		return rejected(ReasonInvalidOption), nil
	}

	// 3. No vote for this token yet
	voted, err := ledger.HasVoteByToken(ctx, tx, vote.PollID, vote.VoterToken)
	if err != nil {
		return Result{}, err
	}
	if voted {
		return rejected(ReasonDuplicate), nil
	}

	// 4. No vote from this address yet, skipped when the address is unknown
	if vote.IPHash != nil {
		voted, err = ledger.HasVoteByIPHash(ctx, tx, vote.PollID, *vote.IPHash)
		if err != nil {
			return Result{}, err
		}
		if voted {
			return rejected(ReasonDuplicate), nil
		}
	}

	if c.beforeInsert != nil {
		if err := c.beforeInsert(ctx, tx, vote); err != nil {
			return Result{}, err
		}
	}

	// The checks above can race with a concurrent attempt; the constraints
	// hit by the insert cannot
	err = ledger.InsertVote(ctx, tx, vote)
	switch {
	case errors.Is(err, ledger.ErrDuplicateVote):
		return rejected(ReasonDuplicate), nil
	case errors.Is(err, ledger.ErrOptionMismatch):
		return Result{}, fmt.Errorf("%w: %v", ErrIntegrityViolation, err)
	case err != nil:
		return Result{}, err
	}

	newCount, err := ledger.AddToCount(ctx, tx, vote.PollID, vote.OptionID, 1)
	if errors.Is(err, ledger.ErrOptionMismatch) {
		return Result{}, fmt.Errorf("%w: %v", ErrIntegrityViolation, err)
	}
	if err != nil {
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return commitFailed(err)
	}

	return Result{Accepted: true, NewCount: newCount}, nil
}

// commitFailed classifies a failed commit. Deferred uniqueness checks
// surface here instead of at the insert.
func commitFailed(err error) (Result, error) {
	if ledger.IsUniqueViolation(err) {
		return rejected(ReasonDuplicate), nil
	}
	return Result{}, fmt.Errorf("failed to commit vote: %w", err)
}

func rejected(reason Reason) Result {
	return Result{Accepted: false, Reason: reason}
}

func validate(pollID string, optionID int64, voterToken string) error {
	if pollID == "" {
		return &ValidationError{Field: "pollId", Message: "poll id is required"}
	}
	if optionID <= 0 {
		return &ValidationError{Field: "optionId", Message: "option id must be a positive integer"}
	}
	if voterToken == "" {
		return &ValidationError{Field: "voterToken", Message: "voter token is required"}
	}
	return nil
}
