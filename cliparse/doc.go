// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - IPHashSalt: Secret that keys the source address hash (required)
  - TxTimeout: Upper bound for one vote transaction (default: 5s)
  - SessionBuffer: Events queued per live session before drops (default: 16)
  - SeedPoll: Create a sample poll on startup (default: false)

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	--tx-timeout     Vote transaction timeout
	--session-buffer Live session queue depth
	--seed           Seed a sample poll
	--ip-salt        Source address hash salt

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	VOTE_TX_TIMEOUT → --tx-timeout
	SESSION_BUFFER  → --session-buffer
	SEED_POLL       → --seed
	IP_HASH_SALT    → --ip-salt

CLI flags take precedence over environment variables. main loads a .env
file into the environment before ParseFlags runs.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - IP_HASH_SALT must be provided
  - SESSION_BUFFER must be at least 1
*/
package cliparse
