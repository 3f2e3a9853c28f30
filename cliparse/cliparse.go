package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	IPHashSalt    string
	TxTimeout     time.Duration
	SessionBuffer int
	SeedPoll      bool
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("livepoll", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Admission and broadcast tuning
	fs.DurationVar(&cfg.TxTimeout, "tx-timeout", 0, "Upper bound for one vote transaction")
	fs.IntVar(&cfg.SessionBuffer, "session-buffer", 0, "Queued events per live session before dropping")
	fs.BoolVar(&cfg.SeedPoll, "seed", false, "Create a sample poll on startup")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "Source address hash salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.TxTimeout == 0 {
		if raw := os.Getenv("VOTE_TX_TIMEOUT"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return Config{}, errors.New("invalid VOTE_TX_TIMEOUT env variable")
			}
			cfg.TxTimeout = d
		} else {
			cfg.TxTimeout = 5 * time.Second
		}
	}
	if cfg.TxTimeout < 0 {
		return Config{}, errors.New("tx timeout must be positive")
	}

	if cfg.SessionBuffer == 0 {
		if raw := os.Getenv("SESSION_BUFFER"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return Config{}, errors.New("invalid SESSION_BUFFER env variable")
			}
			cfg.SessionBuffer = n
		} else {
			cfg.SessionBuffer = 16
		}
	}
	if cfg.SessionBuffer < 1 {
		return Config{}, errors.New("session buffer must be at least 1")
	}

	if !cfg.SeedPoll {
		if raw := os.Getenv("SEED_POLL"); raw != "" {
			seed, err := strconv.ParseBool(raw)
			if err != nil {
				return Config{}, errors.New("invalid SEED_POLL env variable")
			}
			cfg.SeedPoll = seed
		}
	}

	// Secrets - MUST be provided
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	return cfg, nil
}
