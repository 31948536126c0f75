// Package protocol defines the chat event model and the JSON wire format
// exchanged between the server and connected clients.
package protocol

import (
	"time"

	"github.com/google/uuid"
)

// EventKind discriminates the three things that can land in a room's history.
type EventKind string

const (
	EventMessage EventKind = "message"
	EventJoin    EventKind = "join"
	EventLeave   EventKind = "leave"
)

// ChatEvent is an immutable record of a message, join, or leave occurrence.
// The id exists only for client-side render keys; ordering comes from the
// history position. Timestamps are hub wall clock in milliseconds.
type ChatEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Nickname  string    `json:"nickname"`
	Content   string    `json:"content"`
	Timestamp int64     `json:"timestamp"`
	Kind      EventKind `json:"type"`
}

// NewEvent stamps a fresh ChatEvent with a generated id and the current time.
func NewEvent(kind EventKind, userID, nickname, content string) ChatEvent {
	return ChatEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Nickname:  nickname,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		Kind:      kind,
	}
}
