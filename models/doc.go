// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, domain, and live feed types.

JSON field names are camelCase to match the web client.

# Request Types

  - CreatePollRequest: question, options
  - VoteRequest: optionId, voterToken

# Response Types

  - CreatePollResponse: id
  - VoteResponse: success, message, newCount
  - ErrorResponse: error, message, field

# Domain Types

  - Poll: immutable question with an opaque, URL-safe id
  - Option: one answer of a poll with its cached vote count
  - PollWithOptions: poll fetch payload, options in creation order
  - Vote: immutable record binding one identity pair to one option
  - IdentityHints: voter token and best-effort source address

# Live Feed

Every accepted vote produces one message on the feed:

	{"type": "vote_update", "payload": {"pollId": "...", "optionId": 3, "newCount": 12}}

VoterToken and IPHash on Vote are never serialized.
*/
package models
