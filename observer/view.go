// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package observer

import (
	"errors"
	"sync"

	"github.com/danielhkuo/livepoll/models"
)

var ErrWrongPoll = errors.New("baseline is for a different poll")

// View is one client's cached copy of a poll, kept current by vote updates.
type View struct {
	mu     sync.Mutex
	pollID string
	ready  bool
	poll   models.PollWithOptions
	index  map[int64]int
}

func NewView(pollID string) *View {
	return &View{pollID: pollID}
}

// SetBaseline replaces the cached state with an authoritative poll fetch.
// Updates are ignored until the first baseline arrives.
func (v *View) SetBaseline(poll models.PollWithOptions) error {
	if poll.ID != v.pollID {
		return ErrWrongPoll
	}

	options := make([]models.Option, len(poll.Options))
	copy(options, poll.Options)
	index := make(map[int64]int, len(options))
	for i, opt := range options {
		index[opt.ID] = i
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.poll = poll
	v.poll.Options = options
	v.index = index
	v.ready = true
	return nil
}

// Apply merges an update by option ID and reports whether the view changed.
// Updates for other polls, unknown options, or updates that arrive before
// a baseline are ignored. Counts only grow, so an update older than the
// cached count is ignored too.
func (v *View) Apply(update models.VoteUpdate) bool {
	if update.PollID != v.pollID {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ready {
		return false
	}

	i, ok := v.index[update.OptionID]
	if !ok {
		return false
	}
	if update.NewCount <= v.poll.Options[i].Count {
		return false
	}

	v.poll.Options[i].Count = update.NewCount
	return true
}

// Ready reports whether a baseline has been set
func (v *View) Ready() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ready
}

// Snapshot returns a copy of the current state
func (v *View) Snapshot() models.PollWithOptions {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := v.poll
	snap.Options = make([]models.Option, len(v.poll.Options))
	copy(snap.Options, v.poll.Options)
	return snap
}
