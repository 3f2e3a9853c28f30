// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package observer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/livepoll/models"
)

var ErrPollNotFound = errors.New("poll not found")

// Client follows a poll on a running server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Dialer     *websocket.Dialer
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Dialer:     websocket.DefaultDialer,
	}
}

// FetchPoll reads the authoritative poll state
func (c *Client) FetchPoll(ctx context.Context, pollID string) (models.PollWithOptions, error) {
	endpoint, err := url.JoinPath(c.BaseURL, "api", "polls", pollID)
	if err != nil {
		return models.PollWithOptions{}, fmt.Errorf("failed to build poll url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.PollWithOptions{}, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.PollWithOptions{}, fmt.Errorf("failed to fetch poll: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.PollWithOptions{}, ErrPollNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.PollWithOptions{}, fmt.Errorf("failed to fetch poll: status %d", resp.StatusCode)
	}

	var poll models.PollWithOptions
	if err := json.NewDecoder(resp.Body).Decode(&poll); err != nil {
		return models.PollWithOptions{}, fmt.Errorf("failed to decode poll: %w", err)
	}
	return poll, nil
}

// FeedURL maps the base URL to the live feed endpoint
func (c *Client) FeedURL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}

// Follow connects to the live feed, fetches the baseline, then applies
// updates until ctx is cancelled or the connection fails. onChange is
// called with a snapshot after the baseline and after every applied update.
//
// The feed is dialed before the fetch so no update between the two is lost;
// updates older than the baseline are discarded by the View.
func (c *Client) Follow(ctx context.Context, pollID string, onChange func(models.PollWithOptions)) error {
	feedURL, err := c.FeedURL()
	if err != nil {
		return err
	}

	conn, _, err := c.Dialer.DialContext(ctx, feedURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to live feed: %w", err)
	}
	defer conn.Close()

	// Unblock the read loop on cancellation
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	view := NewView(pollID)

	baseline, err := c.FetchPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if err := view.SetBaseline(baseline); err != nil {
		return err
	}
	if onChange != nil {
		onChange(view.Snapshot())
	}

	for {
		var msg models.FeedMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("live feed closed: %w", err)
		}

		if msg.Type != models.EventVoteUpdate {
			continue
		}
		if view.Apply(msg.Payload) && onChange != nil {
			onChange(view.Snapshot())
		}
	}
}
