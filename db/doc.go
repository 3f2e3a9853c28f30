// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open picks the driver from Config.DatabaseType and pings before returning:

	conn, err := db.Open(cfg)

PostgreSQL goes through lib/pq. SQLite goes through modernc.org/sqlite with
foreign keys, a busy timeout, WAL journaling and immediate transactions
enabled, and is limited to a single open connection.

# Schema Creation

CreateSchema initializes all required tables for the given dialect:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - poll: question and creation time, keyed by an opaque URL-safe id
  - option: answers per poll, in creation order, with the cached vote_count
  - vote: the ledger of accepted votes

# Relationships

	poll 1──* option
	poll 1──* vote
	option 1──* vote   (composite key: option(id, poll_id))

All foreign keys use ON DELETE CASCADE. The composite foreign key from vote
to option(id, poll_id) means a vote can only reference an option of its own
poll.

# Constraints

The fairness rules live in the schema:

  - vote UNIQUE (poll_id, voter_token)
  - vote UNIQUE (poll_id, ip_hash), NULL hashes never collide
  - option vote_count >= 0
*/
package db
