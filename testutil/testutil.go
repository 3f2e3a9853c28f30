// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/db"
)

// SetupTestDB creates a fresh SQLite database with the full schema in the
// test's temp dir
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "livepoll_test.db")
	conn, err := sql.Open("sqlite", db.SQLiteDSN("file:"+path))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn, cliparse.DatabaseSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   "file:livepoll_test.db",
		DatabaseType:  cliparse.DatabaseSQLite,
		IPHashSalt:    "test-ip-salt",
		TxTimeout:     5 * time.Second,
		SessionBuffer: 16,
	}
}

// CreateTestPoll creates a poll with the given options and returns the poll
// ID and the option IDs in creation order
func CreateTestPoll(t *testing.T, conn *sql.DB, question string, options ...string) (string, []int64) {
	t.Helper()

	pollID, err := auth.GeneratePollID()
	if err != nil {
		t.Fatalf("Failed to generate poll ID: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO poll (id, question, created_at)
		VALUES ($1, $2, $3)
	`, pollID, question, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	optionIDs := make([]int64, 0, len(options))
	for i, text := range options {
		var id int64
		err := conn.QueryRow(`
			INSERT INTO option (poll_id, sort_order, text, vote_count)
			VALUES ($1, $2, $3, 0)
			RETURNING id
		`, pollID, i, text).Scan(&id)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		optionIDs = append(optionIDs, id)
	}

	return pollID, optionIDs
}

// InsertTestVote writes a vote row directly, bypassing admission. The
// option count is not touched.
func InsertTestVote(t *testing.T, conn *sql.DB, pollID string, optionID int64, voterToken string, ipHash *string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO vote (id, poll_id, option_id, voter_token, ip_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), pollID, optionID, voterToken, ipHash, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// OptionCount reads the stored count for an option
func OptionCount(t *testing.T, conn *sql.DB, optionID int64) int64 {
	t.Helper()

	var count int64
	if err := conn.QueryRow(`SELECT vote_count FROM option WHERE id = $1`, optionID).Scan(&count); err != nil {
		t.Fatalf("Failed to read option count: %v", err)
	}
	return count
}

// VoteCount counts ledger rows for a poll
func VoteCount(t *testing.T, conn *sql.DB, pollID string) int {
	t.Helper()

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE poll_id = $1`, pollID).Scan(&count); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return count
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
