// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the livepoll API server.

livepoll runs single-choice polls with live results. Each voter gets one
vote per poll, enforced by voter token and by source address, and every
accepted vote is pushed to connected clients over a websocket.

# Starting the Server

	DATABASE_URL=livepoll.db IP_HASH_SALT=... go run .

Or against PostgreSQL with flags:

	go run . -t postgres -d "postgres://..." --ip-salt ... --seed

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - IP_HASH_SALT (--ip-salt): secret keying the stored source-address hash

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - VOTE_TX_TIMEOUT (--tx-timeout): bound on one vote transaction (default: 5s)
  - SESSION_BUFFER (--session-buffer): queued feed events per client (default: 16)
  - SEED_POLL (--seed): create a sample poll with a few votes on startup

# Architecture

  - ledger: polls, options, votes and per-option counts in SQL
  - admission: the vote decision and its single transaction
  - broadcast: in-memory fan-out of accepted votes to live sessions
  - observer: a Go client that follows a poll from the outside
  - handlers, router: HTTP and websocket endpoints
  - middleware: CORS, logging, JSON helpers
  - auth: poll IDs, voter identity hints, address hashing
  - db: connection and schema per dialect
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
