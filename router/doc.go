// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the livepoll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, controller, hub)

# Endpoints

Health:

	GET /health

Polls:

	POST /api/polls      - Create poll
	GET  /api/polls/{id} - Poll with options and current counts

Voting:

	POST /api/polls/{id}/vote - Submit a vote (voter token in body or X-Voter-Token)

Live feed:

	GET /ws - Websocket stream of vote_update messages

# Handler Initialization

The router creates handler instances around shared components:

	pollHandler := handlers.NewPollHandler(store)
	votingHandler := handlers.NewVotingHandler(controller)
	feedHandler := handlers.NewFeedHandler(hub)

The same hub must be the controller's publisher for the feed to see votes.
*/
package router
