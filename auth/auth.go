// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/danielhkuo/livepoll/models"
)

// VoterTokenHeader lets clients send the voter token outside the JSON body
const VoterTokenHeader = "X-Voter-Token"

// PollIDLength is the number of base62 characters in a poll ID
const PollIDLength = 10

var ErrMissingVoterToken = errors.New("voter token is required")

const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GeneratePollID creates a short, random, URL-safe poll ID
func GeneratePollID() (string, error) {
	// Rejection sampling keeps every character equally likely
	const maxByte = 255 - (256 % len(base62Chars))

	id := make([]byte, 0, PollIDLength)
	buf := make([]byte, PollIDLength*2)
	for len(id) < PollIDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate poll ID: %w", err)
		}
		for _, b := range buf {
			if int(b) > maxByte {
				continue
			}
			id = append(id, base62Chars[int(b)%len(base62Chars)])
			if len(id) == PollIDLength {
				break
			}
		}
	}
	return string(id), nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// ClientAddress extracts the best-effort source address of a request.
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr.
// Returns "" when none of them carry an address.
//
// Forwarding headers are taken as given: the server is meant to run behind
// a proxy that overwrites them, and without one a client can set any value.
func ClientAddress(r *http.Request) string {
	// Check X-Forwarded-For (load balancers), first hop is the client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	// Check X-Real-IP (nginx)
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr, stripping the port if present
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// ExtractHints derives the identity hints for a vote request.
// bodyToken wins over the X-Voter-Token header. A missing token is an
// error; a missing address is not.
func ExtractHints(r *http.Request, bodyToken string) (models.IdentityHints, error) {
	token := strings.TrimSpace(bodyToken)
	if token == "" {
		token = strings.TrimSpace(r.Header.Get(VoterTokenHeader))
	}
	if token == "" {
		return models.IdentityHints{}, ErrMissingVoterToken
	}

	return models.IdentityHints{
		VoterToken:    token,
		SourceAddress: ClientAddress(r),
	}, nil
}
