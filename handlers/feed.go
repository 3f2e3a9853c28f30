// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/livepoll/broadcast"
	"github.com/danielhkuo/livepoll/models"
)

const (
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	pongWait     = pingInterval + writeWait
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin may follow the feed
	CheckOrigin: func(r *http.Request) bool { return true },
}

type FeedHandler struct {
	hub *broadcast.Hub
}

func NewFeedHandler(hub *broadcast.Hub) *FeedHandler {
	return &FeedHandler{hub: hub}
}

// ServeWS handles GET /ws. Each connection is one live session that
// receives every accepted vote until it disconnects.
func (h *FeedHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	session := h.hub.Register()

	go h.readPump(conn, session)
	h.writePump(conn, session)
}

// writePump is the only writer on conn
func (h *FeedHandler) writePump(conn *websocket.Conn, session *broadcast.Session) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		h.hub.Unregister(session)
		conn.Close()
	}()

	for {
		select {
		case update := <-session.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			msg := models.FeedMessage{Type: models.EventVoteUpdate, Payload: update}
			if err := conn.WriteJSON(msg); err != nil {
				slog.Info("live session write failed", "session_id", session.ID, "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-session.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// readPump discards client messages and ends the session on disconnect
func (h *FeedHandler) readPump(conn *websocket.Conn, session *broadcast.Session) {
	defer h.hub.Unregister(session)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("live session closed unexpectedly", "session_id", session.ID, "error", err)
			}
			return
		}
	}
}
