package server

import "github.com/okeefe/banter/internal/protocol"

// History is an append-only, size-bounded sequence of chat events backed by
// a ring buffer. When the buffer is full, appending evicts the oldest
// event. Stored events are never mutated. Like the Registry, it is owned by
// one room and serialized by that room's mutex.
type History struct {
	buf  []protocol.ChatEvent
	head int // index of the oldest event
	size int
}

// NewHistory creates a buffer holding at most capacity events.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{buf: make([]protocol.ChatEvent, capacity)}
}

// Append stores an event, evicting the oldest when the buffer is full.
func (h *History) Append(evt protocol.ChatEvent) {
	if h.size < len(h.buf) {
		h.buf[(h.head+h.size)%len(h.buf)] = evt
		h.size++
		return
	}
	h.buf[h.head] = evt
	h.head = (h.head + 1) % len(h.buf)
}

// Len returns the number of stored events.
func (h *History) Len() int {
	return h.size
}

// Snapshot returns the last min(n, Len) events, oldest first.
func (h *History) Snapshot(n int) []protocol.ChatEvent {
	if n > h.size {
		n = h.size
	}
	if n <= 0 {
		return []protocol.ChatEvent{}
	}
	out := make([]protocol.ChatEvent, 0, n)
	start := h.size - n
	for i := start; i < h.size; i++ {
		out = append(out, h.buf[(h.head+i)%len(h.buf)])
	}
	return out
}
