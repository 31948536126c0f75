package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 64 * 1024

	// maxNicknameLen mirrors the browser UI's input bound; the hub clips
	// rather than rejects so a hand-rolled client can't break the room.
	maxNicknameLen = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is the WebSocket-backed Conn implementation. All outbound frames
// pass through a buffered channel drained by writePump, so Send never
// blocks the room.
type Client struct {
	room      *Room
	conn      *websocket.Conn
	send      chan []byte
	userID    string
	closeOnce sync.Once
	log       *slog.Logger
}

// Send queues a frame for delivery. It reports false when the client's
// buffer is full, which the room treats as a dropped frame.
func (c *Client) Send(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close tears down the underlying connection. The read pump notices and
// runs the usual leave path.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}

// readPump reads frames from the WebSocket and hands them to the room.
// When the connection closes or errors for any reason, the deferred Leave
// runs synchronously so no further sends target this session.
func (c *Client) readPump() {
	defer func() {
		c.room.Leave(c.userID, c)
		c.Close()
	}()
	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("ws read error", "user", c.userID, "error", err)
			}
			return
		}
		c.room.Inbound(c.userID, raw)
	}
}

// writePump sends queued frames to the WebSocket and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS upgrades an HTTP request to a WebSocket and joins the connection
// to its room. Participant id and nickname come from query parameters; a
// missing id is generated, a missing nickname defaults to "Anonymous".
// Non-upgrade requests are rejected by the upgrader with a client error.
func ServeWS(hub *Hub, log *slog.Logger, w http.ResponseWriter, r *http.Request, roomID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("ws upgrade rejected", "room", roomID, "error", err)
		return
	}

	q := r.URL.Query()
	userID := q.Get("userId")
	if userID == "" {
		userID = uuid.New().String()
	}
	nickname := q.Get("nickname")
	if nickname == "" {
		nickname = "Anonymous"
	}
	if runes := []rune(nickname); len(runes) > maxNicknameLen {
		nickname = string(runes[:maxNicknameLen])
	}

	room := hub.GetOrCreateRoom(roomID)
	room.Bind(roomID, q.Get("name"))

	client := &Client{
		room:   room,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		log:    log.With("room", roomID),
	}

	go client.writePump()
	room.Join(userID, nickname, client)
	go client.readPump()
}
