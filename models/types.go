package models

import "time"

// Live feed message types
const (
	EventVoteUpdate = "vote_update"
)

// Poll creation limits
const (
	MinQuestionLength = 5
	MaxQuestionLength = 500
	MinOptions        = 2
)

// Request types

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type VoteRequest struct {
	OptionID   int64  `json:"optionId"`
	VoterToken string `json:"voterToken"`
}

// Response types

type CreatePollResponse struct {
	ID string `json:"id"`
}

type VoteResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	NewCount int64  `json:"newCount"`
}

// Domain types

type Poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"createdAt"`
}

// Option carries the cached aggregate for its poll. Count is only ever
// changed by the admission transaction.
type Option struct {
	ID       int64  `json:"id"`
	PollID   string `json:"pollId"`
	Position int    `json:"-"`
	Text     string `json:"text"`
	Count    int64  `json:"count"`
}

// PollWithOptions is the poll fetch payload. Options are in creation order.
type PollWithOptions struct {
	Poll
	Options []Option `json:"options"`
}

type Vote struct {
	ID         string    `json:"id"`
	PollID     string    `json:"pollId"`
	OptionID   int64     `json:"optionId"`
	VoterToken string    `json:"-"` // Never expose in JSON
	IPHash     *string   `json:"-"` // Never expose in JSON
	CreatedAt  time.Time `json:"createdAt"`
}

// IdentityHints are the two fairness signals taken from a vote request.
// SourceAddress is empty when the address could not be determined.
type IdentityHints struct {
	VoterToken    string
	SourceAddress string
}

// Live feed types

type VoteUpdate struct {
	PollID   string `json:"pollId"`
	OptionID int64  `json:"optionId"`
	NewCount int64  `json:"newCount"`
}

type FeedMessage struct {
	Type    string     `json:"type"`
	Payload VoteUpdate `json:"payload"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}
