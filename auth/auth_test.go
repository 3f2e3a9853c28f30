// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeneratePollID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GeneratePollID()
		if err != nil {
			t.Fatalf("GeneratePollID() error = %v", err)
		}
		if len(id) != PollIDLength {
			t.Errorf("GeneratePollID() length = %d, want %d", len(id), PollIDLength)
		}
		// Verify it's URL-safe base62
		for _, c := range id {
			if !strings.ContainsRune(base62Chars, c) {
				t.Errorf("GeneratePollID() contains invalid char: %c", c)
			}
		}
		if seen[id] {
			t.Errorf("GeneratePollID() produced duplicate ID %s (extremely unlikely)", id)
		}
		seen[id] = true
	}
}

func TestHashIP(t *testing.T) {
	h1 := HashIP("203.0.113.7", "salt")
	h2 := HashIP("203.0.113.7", "salt")
	if h1 != h2 {
		t.Error("HashIP() is not deterministic")
	}

	if h1 == "203.0.113.7" || strings.Contains(h1, "203.0.113.7") {
		t.Error("HashIP() leaks the raw address")
	}

	if HashIP("203.0.113.8", "salt") == h1 {
		t.Error("HashIP() produced same hash for different addresses")
	}

	if HashIP("203.0.113.7", "other-salt") == h1 {
		t.Error("HashIP() produced same hash for different salts")
	}
}

func TestClientAddress(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "forwarded chain takes first hop",
			remoteAddr: "10.0.0.1:5555",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.2"},
			want:       "198.51.100.4",
		},
		{
			name:       "forwarded single address",
			remoteAddr: "10.0.0.1:5555",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.4"},
			want:       "198.51.100.4",
		},
		{
			name:       "real ip header",
			remoteAddr: "10.0.0.1:5555",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			want:       "198.51.100.9",
		},
		{
			// Taken as given; the fronting proxy is expected to overwrite it
			name:       "forwarded header wins over peer and real ip",
			remoteAddr: "203.0.113.200:5555",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.77", "X-Real-IP": "198.51.100.9"},
			want:       "198.51.100.77",
		},
		{
			name:       "blank forwarded header falls through",
			remoteAddr: "203.0.113.200:5555",
			headers:    map[string]string{"X-Forwarded-For": " , 10.0.0.2"},
			want:       "203.0.113.200",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.10:41234",
			want:       "192.0.2.10",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[2001:db8::1]:443",
			want:       "2001:db8::1",
		},
		{
			name:       "no address at all",
			remoteAddr: "",
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/polls/x/vote", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := ClientAddress(req); got != tt.want {
				t.Errorf("ClientAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractHints(t *testing.T) {
	t.Run("body token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/polls/x/vote", nil)
		req.RemoteAddr = "192.0.2.1:1000"

		hints, err := ExtractHints(req, " token-1 ")
		if err != nil {
			t.Fatalf("ExtractHints() error = %v", err)
		}
		if hints.VoterToken != "token-1" {
			t.Errorf("VoterToken = %q, want token-1", hints.VoterToken)
		}
		if hints.SourceAddress != "192.0.2.1" {
			t.Errorf("SourceAddress = %q, want 192.0.2.1", hints.SourceAddress)
		}
	})

	t.Run("header token fallback", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/polls/x/vote", nil)
		req.Header.Set(VoterTokenHeader, "header-token")

		hints, err := ExtractHints(req, "")
		if err != nil {
			t.Fatalf("ExtractHints() error = %v", err)
		}
		if hints.VoterToken != "header-token" {
			t.Errorf("VoterToken = %q, want header-token", hints.VoterToken)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/polls/x/vote", nil)

		_, err := ExtractHints(req, "   ")
		if !errors.Is(err, ErrMissingVoterToken) {
			t.Errorf("ExtractHints() error = %v, want ErrMissingVoterToken", err)
		}
	})

	t.Run("missing address is not an error", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/polls/x/vote", nil)
		req.RemoteAddr = ""

		hints, err := ExtractHints(req, "t")
		if err != nil {
			t.Fatalf("ExtractHints() error = %v", err)
		}
		if hints.SourceAddress != "" {
			t.Errorf("SourceAddress = %q, want empty", hints.SourceAddress)
		}
	})
}
