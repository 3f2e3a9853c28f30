// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/danielhkuo/livepoll/ledger"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/testutil"
)

// rivalVote writes a competing vote inside tx, as a concurrent attempt
// that passed the same checks would have done
func rivalVote(token string, ipHash *string) func(ctx context.Context, tx *sql.Tx, vote models.Vote) error {
	return func(ctx context.Context, tx *sql.Tx, vote models.Vote) error {
		return ledger.InsertVote(ctx, tx, models.Vote{
			ID:         uuid.NewString(),
			PollID:     vote.PollID,
			OptionID:   vote.OptionID,
			VoterToken: token,
			IPHash:     ipHash,
			CreatedAt:  time.Now().UTC(),
		})
	}
}

// TestConstraintDecidesRace covers attempts whose checks pass but whose
// insert loses to a vote written after the checks ran
func TestConstraintDecidesRace(t *testing.T) {
	testCases := []struct {
		name string
		hook func(ctx context.Context, tx *sql.Tx, vote models.Vote) error
	}{
		{"same token", rivalVote("racer", nil)},
		{"same address", func(ctx context.Context, tx *sql.Tx, vote models.Vote) error {
			return rivalVote("someone-else", vote.IPHash)(ctx, tx, vote)
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, db, _, pub := setup(t)
			pollID, opts := testutil.CreateTestPoll(t, db, "Race question", "A", "B")
			c.beforeInsert = tc.hook

			res, err := c.SubmitVote(context.Background(), pollID, opts[0], "racer", "10.9.0.1")
			if err != nil {
				t.Fatalf("SubmitVote() error = %v", err)
			}
			if res.Accepted || res.Reason != ReasonDuplicate {
				t.Errorf("expected Duplicate, got %+v", res)
			}
			if got := testutil.OptionCount(t, db, opts[0]); got != 0 {
				t.Errorf("count = %d, want 0", got)
			}
			if got := testutil.VoteCount(t, db, pollID); got != 0 {
				t.Errorf("losing attempt left %d vote rows", got)
			}
			if len(pub.Updates()) != 0 {
				t.Errorf("losing attempt published %+v", pub.Updates())
			}
		})
	}
}

func TestForeignKeyRefusalIsIntegrityViolation(t *testing.T) {
	c, db, _, pub := setup(t)
	pollID, opts := testutil.CreateTestPoll(t, db, "Race question", "A", "B")

	// The option disappears from the poll after the ownership check
	c.beforeInsert = func(ctx context.Context, tx *sql.Tx, vote models.Vote) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM option WHERE id = $1`, vote.OptionID)
		return err
	}

	_, err := c.SubmitVote(context.Background(), pollID, opts[0], "t1", "10.9.0.2")
	if !errors.Is(err, ErrIntegrityViolation) {
		t.Fatalf("expected ErrIntegrityViolation, got %v", err)
	}

	if got := testutil.OptionCount(t, db, opts[0]); got != 0 {
		t.Errorf("count = %d, want 0", got)
	}
	if got := testutil.VoteCount(t, db, pollID); got != 0 {
		t.Errorf("refused vote left %d rows", got)
	}
	if len(pub.Updates()) != 0 {
		t.Error("refused vote was published")
	}
}

func TestRetryableErrorsAreRetried(t *testing.T) {
	c, db, _, pub := setup(t)
	pollID, opts := testutil.CreateTestPoll(t, db, "Retry question", "A", "B")

	calls := 0
	c.beforeInsert = func(ctx context.Context, tx *sql.Tx, vote models.Vote) error {
		calls++
		if calls == 1 {
			return &pq.Error{Code: "40001"} // serialization_failure
		}
		return nil
	}

	res, err := c.SubmitVote(context.Background(), pollID, opts[1], "t1", "10.9.0.3")
	if err != nil {
		t.Fatalf("SubmitVote() error = %v", err)
	}
	if !res.Accepted || res.NewCount != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
	if got := testutil.OptionCount(t, db, opts[1]); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
	if len(pub.Updates()) != 1 {
		t.Errorf("expected 1 published update, got %d", len(pub.Updates()))
	}
}

func TestRetriesAreBounded(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		calls int
	}{
		{"retryable every time", &pq.Error{Code: "40P01"}, maxAttempts}, // deadlock_detected
		{"not retryable", errors.New("disk I/O error"), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, db, _, pub := setup(t)
			pollID, opts := testutil.CreateTestPoll(t, db, "Retry question", "A", "B")

			calls := 0
			c.beforeInsert = func(context.Context, *sql.Tx, models.Vote) error {
				calls++
				return tc.err
			}

			_, err := c.SubmitVote(context.Background(), pollID, opts[0], "t1", "10.9.0.4")
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			if calls != tc.calls {
				t.Errorf("expected %d attempts, got %d", tc.calls, calls)
			}
			if testutil.VoteCount(t, db, pollID) != 0 || len(pub.Updates()) != 0 {
				t.Error("failed attempt had side effects")
			}
		})
	}
}

func TestCommitFailed(t *testing.T) {
	res, err := commitFailed(&pq.Error{Code: "23505"}) // unique_violation
	if err != nil {
		t.Fatalf("unique violation at commit returned error %v", err)
	}
	if res.Accepted || res.Reason != ReasonDuplicate {
		t.Errorf("expected Duplicate, got %+v", res)
	}

	cause := errors.New("connection reset")
	res, err = commitFailed(cause)
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if res.Accepted {
		t.Error("failed commit reported as accepted")
	}
}
