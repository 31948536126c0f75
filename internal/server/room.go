package server

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/okeefe/banter/internal/protocol"
)

// snapshotLimit bounds how much history a freshly joined session receives,
// independent of how much the room retains.
const snapshotLimit = 50

// Room owns all state for a single chat room: the session registry and the
// bounded event history. Every mutation goes through the room's own mutex,
// so events gain a total order per room and rooms never contend with each
// other. A room starts unbound; the first connection binds its identity via
// Bind and the room stays alive for as long as the hub holds it, history
// included, even with zero sessions connected.
type Room struct {
	mu        sync.Mutex
	id        string
	name      string
	bound     bool
	createdAt time.Time
	sessions  *Registry
	history   *History
	log       *slog.Logger
}

// NewRoom creates an unbound room retaining at most maxHistory events.
func NewRoom(maxHistory int, log *slog.Logger) *Room {
	if log == nil {
		log = slog.Default()
	}
	return &Room{
		createdAt: time.Now(),
		sessions:  NewRegistry(),
		history:   NewHistory(maxHistory),
		log:       log,
	}
}

// Bind fixes the room's identity and display name. The first call wins;
// every later call is a no-op, so it is safe to call from every connection
// attempt. An empty name defaults to "Room " + id.
func (r *Room) Bind(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bound {
		return
	}
	if name == "" {
		name = "Room " + id
	}
	r.id = id
	r.name = name
	r.bound = true
}

// Join registers a session and brings it up to date. The new session
// receives a full room-state snapshot (participant count including itself,
// up to snapshotLimit recent events, never its own join event); everyone
// else receives the join event and an updated user count. A session already
// holding the same participant id is replaced and its connection closed, so
// an id never has duplicate membership.
func (r *Room) Join(userID, nickname string, conn Conn) {
	s := &Session{ID: userID, Nickname: nickname, conn: conn}

	r.mu.Lock()
	replaced := r.sessions.Add(s)

	state, err := protocol.NewServerMessage(protocol.MsgRoomState, protocol.RoomState{
		ID:        r.id,
		Name:      r.name,
		CreatedAt: r.createdAt.UnixMilli(),
		UserCount: r.sessions.Count(),
		Messages:  r.history.Snapshot(snapshotLimit),
	})
	if err != nil {
		r.log.Error("marshal room state", "room", r.id, "error", err)
	}
	data, _ := json.Marshal(state)
	if !conn.Send(data) {
		// The new connection can't even take its snapshot; treat it as
		// already dead. Its join was never announced, so deregister without
		// a leave event.
		r.sessions.Remove(userID)
		r.mu.Unlock()
		conn.Close()
		if replaced != nil {
			replaced.conn.Close()
		}
		r.log.Warn("session dropped during join", "room", r.id, "user", userID)
		return
	}

	evt := protocol.NewEvent(protocol.EventJoin, userID, nickname, nickname+" joined the room")
	r.history.Append(evt)
	r.broadcastLocked(r.marshal(protocol.MsgMessage, evt), userID)
	r.broadcastLocked(r.marshal(protocol.MsgUserCount, protocol.UserCount{Count: r.sessions.Count()}), userID)
	count := r.sessions.Count()
	r.mu.Unlock()

	// Close the superseded connection outside the lock; its read pump's
	// Leave is a no-op because the registry now points at the new session.
	if replaced != nil {
		replaced.conn.Close()
	}
	r.log.Info("session joined", "room", r.id, "user", userID, "nickname", nickname, "users", count)
}

// Inbound interprets one raw frame from a registered session. Malformed
// payloads and unrecognized message types are ignored without disturbing
// the connection.
func (r *Room) Inbound(userID string, raw []byte) {
	var msg protocol.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		r.log.Debug("malformed inbound frame", "room", r.id, "user", userID, "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions.Get(userID)
	if !ok {
		return
	}

	switch msg.Type {
	case protocol.MsgSendMessage:
		if strings.TrimSpace(msg.Content) == "" {
			return
		}
		evt := protocol.NewEvent(protocol.EventMessage, userID, s.Nickname, msg.Content)
		r.history.Append(evt)
		// The sender relies on this echo rather than optimistic rendering,
		// so the message goes to everyone including them.
		r.broadcastLocked(r.marshal(protocol.MsgMessage, evt), "")
	case protocol.MsgPing:
		s.conn.Send(r.marshal(protocol.MsgPong, nil))
	default:
		// Unknown type: ignore for forward compatibility.
	}
}

// Leave deregisters a session and announces its departure to everyone still
// connected. It is idempotent, and the conn guard makes it safe for a
// superseded connection's teardown to race the replacement: only the
// session currently holding the id is removed.
func (r *Room) Leave(userID string, conn Conn) {
	r.mu.Lock()
	s, ok := r.sessions.Get(userID)
	if !ok || (conn != nil && s.conn != conn) {
		r.mu.Unlock()
		return
	}
	r.sessions.Remove(userID)

	evt := protocol.NewEvent(protocol.EventLeave, userID, s.Nickname, s.Nickname+" left the room")
	r.history.Append(evt)
	r.broadcastLocked(r.marshal(protocol.MsgMessage, evt), "")
	r.broadcastLocked(r.marshal(protocol.MsgUserCount, protocol.UserCount{Count: r.sessions.Count()}), "")
	count := r.sessions.Count()
	r.mu.Unlock()

	r.log.Info("session left", "room", r.id, "user", userID, "users", count)
}

// Info returns a point-in-time summary of the room.
func (r *Room) Info() protocol.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return protocol.RoomInfo{
		ID:           r.id,
		Name:         r.name,
		CreatedAt:    r.createdAt.UnixMilli(),
		UserCount:    r.sessions.Count(),
		MessageCount: r.history.Len(),
	}
}

// History returns the last n events, oldest first.
func (r *Room) History(n int) []protocol.ChatEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Snapshot(n)
}

// marshal serializes a server message once for fan-out. Payloads are plain
// structs, so marshaling cannot realistically fail; a failure is logged and
// yields a frame that clients discard as malformed.
func (r *Room) marshal(typ string, payload any) []byte {
	msg, err := protocol.NewServerMessage(typ, payload)
	if err != nil {
		r.log.Error("marshal server message", "room", r.id, "type", typ, "error", err)
	}
	data, _ := json.Marshal(msg)
	return data
}

// broadcastLocked delivers one serialized frame to every session, or every
// session except exclude when non-empty. A recipient that can't take the
// frame just misses it; detecting dead connections is the read pump's job,
// never the broadcaster's.
func (r *Room) broadcastLocked(data []byte, exclude string) {
	deliver := func(s *Session) {
		if !s.conn.Send(data) {
			r.log.Debug("dropped frame for slow session", "room", r.id, "user", s.ID)
		}
	}
	if exclude == "" {
		r.sessions.ForEach(deliver)
		return
	}
	r.sessions.ForEachExcept(exclude, deliver)
}
