// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the live poll API.

# Handler Types

Each handler is a struct holding the component it fronts:

  - PollHandler: poll creation and retrieval, backed by *ledger.Store
  - VotingHandler: vote submission, backed by *admission.Controller
  - FeedHandler: the live websocket feed, backed by *broadcast.Hub

	pollHandler := handlers.NewPollHandler(store)
	votingHandler := handlers.NewVotingHandler(controller)
	feedHandler := handlers.NewFeedHandler(hub)

# Polls

	POST /api/polls      → CreatePoll {question, options} returns {id}
	GET  /api/polls/{id} → GetPoll returns the poll with options and counts

The question must be 5 to 500 characters and at least two non-empty
options are required.

# Voting

	POST /api/polls/{id}/vote → SubmitVote {optionId, voterToken}

The voter token may also be sent as the X-Voter-Token header. Outcomes:

	200 accepted, body carries newCount
	400 malformed input or an option that is not part of the poll
	404 unknown poll
	409 the token or the source address already voted on the poll
	422 the store refused the vote as inconsistent
	500 storage failure, safe to retry

# Live Feed

	GET /ws → ServeWS

Every accepted vote is pushed to every connected client as

	{"type":"vote_update","payload":{"pollId":"...","optionId":1,"newCount":3}}

Clients filter by poll. The server pings every 30 seconds and drops a
connection whose writes fail.
*/
package handlers
