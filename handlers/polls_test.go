// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/ledger"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/testutil"
)

func TestCreatePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPollHandler(ledger.New(db, cliparse.DatabaseSQLite))

	req := testutil.MakeRequest("POST", "/api/polls", models.CreatePollRequest{
		Question: "What should we build next?",
		Options:  []string{"  CLI ", "API", "Dashboard"},
	}, nil)
	w := httptest.NewRecorder()

	handler.CreatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreatePollResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.ID) != 10 {
		t.Fatalf("Expected 10 character poll id, got %q", resp.ID)
	}

	// Options are stored trimmed, in order, with zero counts
	req = httptest.NewRequest("GET", "/api/polls/"+resp.ID, nil)
	req.SetPathValue("id", resp.ID)
	w = httptest.NewRecorder()
	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var poll models.PollWithOptions
	testutil.AssertJSON(t, w, &poll)

	want := []string{"CLI", "API", "Dashboard"}
	if len(poll.Options) != len(want) {
		t.Fatalf("Expected %d options, got %d", len(want), len(poll.Options))
	}
	for i, opt := range poll.Options {
		if opt.Text != want[i] {
			t.Errorf("Option %d = %q, want %q", i, opt.Text, want[i])
		}
		if opt.Count != 0 {
			t.Errorf("Option %d count = %d, want 0", i, opt.Count)
		}
		if opt.PollID != resp.ID {
			t.Errorf("Option %d pollId = %q", i, opt.PollID)
		}
	}
}

func TestCreatePoll_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPollHandler(ledger.New(db, cliparse.DatabaseSQLite))

	testCases := []struct {
		name  string
		body  interface{}
		field string
	}{
		{
			name:  "question too short",
			body:  models.CreatePollRequest{Question: "Hey?", Options: []string{"a", "b"}},
			field: "question",
		},
		{
			name:  "question only whitespace",
			body:  models.CreatePollRequest{Question: "         ", Options: []string{"a", "b"}},
			field: "question",
		},
		{
			name:  "question too long",
			body:  models.CreatePollRequest{Question: strings.Repeat("q", 501), Options: []string{"a", "b"}},
			field: "question",
		},
		{
			name:  "one option",
			body:  models.CreatePollRequest{Question: "Valid question", Options: []string{"only"}},
			field: "options",
		},
		{
			name:  "no options",
			body:  models.CreatePollRequest{Question: "Valid question"},
			field: "options",
		},
		{
			name:  "blank option",
			body:  models.CreatePollRequest{Question: "Valid question", Options: []string{"a", " "}},
			field: "options",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/polls", tc.body, nil)
			w := httptest.NewRecorder()

			handler.CreatePoll(w, req)

			testutil.AssertStatus(t, w, http.StatusBadRequest)

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Field != tc.field {
				t.Errorf("Expected field %q, got %q", tc.field, resp.Field)
			}
		})
	}

	var polls int
	if err := db.QueryRow("SELECT COUNT(*) FROM poll").Scan(&polls); err != nil {
		t.Fatal(err)
	}
	if polls != 0 {
		t.Errorf("Invalid requests created %d polls", polls)
	}
}

func TestCreatePoll_InvalidJSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPollHandler(ledger.New(db, cliparse.DatabaseSQLite))

	req := httptest.NewRequest("POST", "/api/polls", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.CreatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestGetPoll_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPollHandler(ledger.New(db, cliparse.DatabaseSQLite))

	req := httptest.NewRequest("GET", "/api/polls/nosuchpoll", nil)
	req.SetPathValue("id", "nosuchpoll")
	w := httptest.NewRecorder()

	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetPoll_ReturnsStoredCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPollHandler(ledger.New(db, cliparse.DatabaseSQLite))
	pollID, opts := testutil.CreateTestPoll(t, db, "Tabs or spaces?", "Tabs", "Spaces")

	if _, err := db.Exec("UPDATE option SET vote_count = 4 WHERE id = $1", opts[1]); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/polls/"+pollID, nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var poll models.PollWithOptions
	testutil.AssertJSON(t, w, &poll)
	if poll.Question != "Tabs or spaces?" {
		t.Errorf("Question = %q", poll.Question)
	}
	if poll.Options[0].Count != 0 || poll.Options[1].Count != 4 {
		t.Errorf("Unexpected counts %d, %d", poll.Options[0].Count, poll.Options[1].Count)
	}
}
