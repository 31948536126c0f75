package server

// Conn is the transport-level handle a session writes to. Send reports
// whether the frame was accepted for delivery; it must never block.
// Close tears the underlying connection down and must be safe to call
// more than once.
type Conn interface {
	Send(data []byte) bool
	Close()
}

// Session binds one participant identity to one live connection within a
// room. The nickname is captured at join time and stamped onto every event
// the participant produces.
type Session struct {
	ID       string
	Nickname string
	conn     Conn
}
