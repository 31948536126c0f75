package server

import (
	"log/slog"
	"sync"

	"github.com/okeefe/banter/internal/protocol"
)

// Hub is the process-wide directory of rooms. It hands out the single live
// Room for a given id, creating it lazily on first access. The hub's lock
// covers only the map; room state is guarded per room.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	maxHistory int
	log        *slog.Logger
}

// NewHub creates a Hub whose rooms retain at most maxHistory events each.
func NewHub(maxHistory int, log *slog.Logger) *Hub {
	if maxHistory <= 0 {
		maxHistory = 1000
	}
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		rooms:      make(map[string]*Room),
		maxHistory: maxHistory,
		log:        log,
	}
}

// GetOrCreateRoom returns the room with the given id, creating it if needed.
func (h *Hub) GetOrCreateRoom(id string) *Room {
	h.mu.RLock()
	r, ok := h.rooms[id]
	h.mu.RUnlock()
	if ok {
		return r
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// Double-check after acquiring write lock.
	if r, ok = h.rooms[id]; ok {
		return r
	}
	r = NewRoom(h.maxHistory, h.log.With("room", id))
	h.rooms[id] = r
	h.log.Info("room created", "room", id)
	return r
}

// GetRoom returns a room or nil if it doesn't exist.
func (h *Hub) GetRoom(id string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[id]
}

// ListRooms returns info about all active rooms.
func (h *Hub) ListRooms() []protocol.RoomInfo {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	out := make([]protocol.RoomInfo, len(rooms))
	for i, r := range rooms {
		out[i] = r.Info()
	}
	return out
}

// RoomCount returns the number of active rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
