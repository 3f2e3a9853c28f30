// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger is the durable record of polls, options and accepted votes.

The vote table is the source of truth. The vote_count column on option is
the aggregate store: one counter per option, kept next to the option row so
a poll fetch is a single read, and maintained incrementally inside the same
transaction that appends the vote.

# Store

	store := ledger.New(conn, cfg.DatabaseType)
	pollID, err := store.CreatePoll(ctx, "Lunch?", []string{"Tacos", "Ramen"})
	poll, err := store.GetPoll(ctx, pollID)

# Transaction Helpers

The admission path runs these against a *sql.Tx from Store.BeginTx:

  - PollExists, OptionPollID: existence checks
  - HasVoteByToken, HasVoteByIPHash: advisory duplicate checks; they may
    race and are never the correctness boundary
  - InsertVote: append; the schema's unique and foreign key constraints are
    authoritative and come back as ErrDuplicateVote / ErrOptionMismatch
  - AddToCount: vote_count = vote_count + delta in one statement, never a
    read followed by a write

# Error Classification

Driver errors are classified by code, not message text:

	ledger.IsUniqueViolation(err)     // pq unique_violation, SQLITE_CONSTRAINT_UNIQUE
	ledger.IsForeignKeyViolation(err) // pq foreign_key_violation, SQLITE_CONSTRAINT_FOREIGNKEY
	ledger.IsRetryable(err)           // serialization/deadlock, SQLITE_BUSY/LOCKED

# Audit

CountDrift recounts vote rows per option and reports any option whose cached
count differs. It scans the ledger and is kept off the read path.
*/
package ledger
