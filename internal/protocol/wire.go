package protocol

import "encoding/json"

// Server → client message types.
const (
	MsgRoomState = "room-state"
	MsgMessage   = "message"
	MsgUserCount = "user-count"
	MsgPong      = "pong"
)

// Client → server message types.
const (
	MsgSendMessage = "send-message"
	MsgPing        = "ping"
)

// ServerMessage is the discriminated envelope the server writes to clients.
// Data is pre-marshaled so a broadcast serializes its payload exactly once.
type ServerMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ClientMessage is what a connected client sends over the socket.
type ClientMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// RoomState is the full-state payload sent to a freshly joined session.
type RoomState struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	CreatedAt int64       `json:"createdAt"`
	UserCount int         `json:"userCount"`
	Messages  []ChatEvent `json:"messages"`
}

// UserCount is the payload of a user-count update.
type UserCount struct {
	Count int `json:"count"`
}

// NewServerMessage builds an envelope around the given payload. A nil
// payload produces an envelope with no data field (e.g. pong).
func NewServerMessage(typ string, payload any) (ServerMessage, error) {
	msg := ServerMessage{Type: typ}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return msg, err
	}
	msg.Data = data
	return msg, nil
}
