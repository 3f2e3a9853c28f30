// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/danielhkuo/livepoll/models"
)

// Hub is the set of live sessions. It is owned by whoever builds the
// server and handed to the admission controller as its Publisher.
type Hub struct {
	sync.RWMutex
	sessions map[string]*Session
	buffer   int
}

// NewHub creates an empty hub. buffer is the number of events each session
// queues before new events are dropped for it.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		sessions: make(map[string]*Session),
		buffer:   buffer,
	}
}

// Register adds a new session and returns it
func (h *Hub) Register() *Session {
	s := &Session{
		ID:     uuid.NewString(),
		events: make(chan models.VoteUpdate, h.buffer),
		done:   make(chan struct{}),
	}

	h.Lock()
	h.sessions[s.ID] = s
	total := len(h.sessions)
	h.Unlock()

	slog.Info("live session registered", "session_id", s.ID, "sessions", total)
	return s
}

// Unregister removes a session and closes its Done channel. Safe to call
// more than once.
func (h *Hub) Unregister(s *Session) {
	h.Lock()
	_, ok := h.sessions[s.ID]
	delete(h.sessions, s.ID)
	total := len(h.sessions)
	h.Unlock()

	s.close()
	if ok {
		slog.Info("live session unregistered", "session_id", s.ID, "sessions", total, "dropped", s.Dropped())
	}
}

// Publish hands update to every registered session without blocking and
// returns how many sessions accepted it. A session whose queue is full
// misses this update.
func (h *Hub) Publish(update models.VoteUpdate) int {
	// One consistent snapshot per broadcast; delivery happens outside the lock
	h.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.RUnlock()

	delivered := 0
	for _, s := range targets {
		if s.offer(update) {
			delivered++
		}
	}
	return delivered
}

// Len returns the number of registered sessions
func (h *Hub) Len() int {
	h.RLock()
	defer h.RUnlock()
	return len(h.sessions)
}

// Session is one observer's outbound queue.
type Session struct {
	ID string

	events  chan models.VoteUpdate
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// Events yields updates in the order they were accepted for this session.
// The channel is never closed; watch Done to stop reading.
func (s *Session) Events() <-chan models.VoteUpdate {
	return s.events
}

// Done is closed when the session is unregistered
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Dropped counts updates discarded because the queue was full
func (s *Session) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Session) offer(update models.VoteUpdate) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.events <- update:
		return true
	default:
		s.dropped.Add(1)
		slog.Debug("live session queue full, dropping update",
			"session_id", s.ID, "poll_id", update.PollID, "option_id", update.OptionID)
		return false
	}
}

func (s *Session) close() {
	s.once.Do(func() { close(s.done) })
}
