package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/okeefe/banter/internal/protocol"
)

// Handlers holds references needed by HTTP handlers.
type Handlers struct {
	Hub       *Hub
	Log       *slog.Logger
	StartTime time.Time
}

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	rooms := h.Hub.ListRooms()
	users, messages := 0, 0
	for _, info := range rooms {
		users += info.UserCount
		messages += info.MessageCount
	}

	uptime := time.Since(h.StartTime)
	writeJSON(w, http.StatusOK, protocol.HealthResponse{
		Status:        "ok",
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		Rooms:         len(rooms),
		Users:         users,
		Messages:      messages,
	})
}

// ListRooms handles GET /api/rooms.
func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.Hub.ListRooms()
	if rooms == nil {
		rooms = []protocol.RoomInfo{}
	}
	writeJSON(w, http.StatusOK, protocol.RoomList{Rooms: rooms})
}

// RoomInfo handles GET /api/rooms/{room}.
func (h *Handlers) RoomInfo(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "room id required")
		return
	}
	room := h.Hub.GetRoom(roomID)
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, room.Info())
}

// RoomHistory handles GET /api/rooms/{room}/history?n={count}.
func (h *Handlers) RoomHistory(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "room id required")
		return
	}

	n := snapshotLimit
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid n parameter")
			return
		}
		n = parsed
	}

	room := h.Hub.GetRoom(roomID)
	if room == nil {
		writeJSON(w, http.StatusOK, protocol.HistoryResponse{Room: roomID, Messages: []protocol.ChatEvent{}, Count: 0})
		return
	}

	msgs := room.History(n)
	writeJSON(w, http.StatusOK, protocol.HistoryResponse{Room: roomID, Messages: msgs, Count: len(msgs)})
}

// HandleWS handles WS /ws/{room}?userId={id}&nickname={nick}&name={display}.
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "room id required")
		return
	}
	ServeWS(h.Hub, h.Log, w, r, roomID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
