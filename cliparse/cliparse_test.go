// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("DATABASE_TYPE", "postgres")
	os.Setenv("IP_HASH_SALT", "test-salt")
	os.Setenv("VOTE_TX_TIMEOUT", "2s")
	os.Setenv("SESSION_BUFFER", "4")
	os.Setenv("SEED_POLL", "true")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabasePostgres {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.TxTimeout != 2*time.Second {
		t.Errorf("expected 2s tx timeout, got %s", cfg.TxTimeout)
	}
	if cfg.SessionBuffer != 4 {
		t.Errorf("expected session buffer 4, got %d", cfg.SessionBuffer)
	}
	if !cfg.SeedPoll {
		t.Error("expected seed poll to be enabled")
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-ip-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-d", "file:test.db", "-ip-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("expected default sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.TxTimeout != 5*time.Second {
		t.Errorf("expected default 5s tx timeout, got %s", cfg.TxTimeout)
	}
	if cfg.SessionBuffer != 16 {
		t.Errorf("expected default session buffer 16, got %d", cfg.SessionBuffer)
	}
	if cfg.SeedPoll {
		t.Error("seed poll should be off by default")
	}
}

func TestParseFlags_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing database url", []string{"-ip-salt", "s1"}},
		{"missing salt", []string{"-d", "file:test.db"}},
		{"unknown database type", []string{"-d", "file:test.db", "-ip-salt", "s1", "-t", "mysql"}},
		{"zero-depth session buffer", []string{"-d", "file:test.db", "-ip-salt", "s1", "-session-buffer", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
