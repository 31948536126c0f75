package mcp

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okeefe/banter/internal/protocol"
)

// Session is the agent's live membership in a room: one WebSocket
// connection dialed on first send and held for the life of the MCP
// process. A background reader drains server frames so keepalive pings
// keep being answered.
type Session struct {
	serverURL string
	room      string
	nick      string
	userID    string

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewSession prepares a session; no connection is made until the first Send.
func NewSession(serverURL, room, nick string) *Session {
	return &Session{
		serverURL: serverURL,
		room:      room,
		nick:      nick,
		userID:    uuid.New().String(),
	}
}

// Send delivers one chat message through the session, dialing the room on
// first use and redialing once if the connection has gone away.
func (s *Session) Send(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureConnLocked(); err != nil {
		return err
	}

	msg := protocol.ClientMessage{Type: protocol.MsgSendMessage, Content: content}
	if err := s.conn.WriteJSON(msg); err != nil {
		// Stale connection; redial once.
		s.teardownLocked()
		if err := s.ensureConnLocked(); err != nil {
			return err
		}
		if err := s.conn.WriteJSON(msg); err != nil {
			s.teardownLocked()
			return fmt.Errorf("send: %w", err)
		}
	}
	return nil
}

// Close tears down the session's connection if one is open.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

func (s *Session) ensureConnLocked() error {
	if s.conn != nil {
		return nil
	}

	u := strings.TrimRight(s.serverURL, "/")
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	wsURL := fmt.Sprintf("%s/ws/%s?userId=%s&nickname=%s",
		u, url.PathEscape(s.room), url.QueryEscape(s.userID), url.QueryEscape(s.nick))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	s.conn = conn

	// Drain server frames; reading is also what services ping/pong.
	go func(c *websocket.Conn) {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}(conn)

	return nil
}

func (s *Session) teardownLocked() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
