// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package admission decides whether a vote is recorded.

	controller := admission.NewController(store, hub, cfg)
	res, err := controller.SubmitVote(ctx, pollID, optionID, token, remoteAddr)

# Checks

Inside one transaction the controller checks, in order:

 1. the poll exists (ReasonNotFound)
 2. the option exists and belongs to the poll (ReasonInvalidOption)
 3. the voter token has not voted on the poll (ReasonDuplicate)
 4. the source address has not voted on the poll (ReasonDuplicate),
    skipped when the address is unknown

The checks are reads and may race with another attempt. The unique
constraints on the vote table decide: an insert that hits one is reported
as ReasonDuplicate. The option count is raised by a single atomic update in
the same transaction.

# Outcomes

A rejection is a Result with Accepted false and a nil error. A non-nil
error is one of:

  - *ValidationError: malformed input, nothing was read or written
  - ErrIntegrityViolation: the store refused an option of another poll
  - anything else: a storage failure; nothing was recorded and the call
    may be retried

Exactly one VoteUpdate is handed to the Publisher per accepted vote, after
commit. Rejections and failures publish nothing.

# Cancellation

A context that is already done stops the attempt before any storage work.
Once the transaction has begun it runs to commit or rollback, bounded by
Config.TxTimeout, even if the caller's context ends. Retryable storage
errors (serialization failures, deadlocks, a busy SQLite database) rerun
the transaction up to three times in total.
*/
package admission
