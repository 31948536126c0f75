package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okeefe/banter/internal/protocol"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func apiURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

func getRooms(server string) (*protocol.RoomList, error) {
	u := apiURL(server, "/api/rooms")
	resp, err := httpClient.Get(u)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	var list protocol.RoomList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &list, nil
}

func getRoomInfo(server, room string) (*protocol.RoomInfo, error) {
	u := apiURL(server, "/api/rooms/"+url.PathEscape(room))
	resp, err := httpClient.Get(u)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}

	var info protocol.RoomInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &info, nil
}

func getHistory(server, room string, n int) (*protocol.HistoryResponse, error) {
	u := apiURL(server, fmt.Sprintf("/api/rooms/%s/history?n=%d", url.PathEscape(room), n))
	resp, err := httpClient.Get(u)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}

	var hist protocol.HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&hist); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &hist, nil
}

func getHealth(server string) (*protocol.HealthResponse, error) {
	u := apiURL(server, "/api/health")
	resp, err := httpClient.Get(u)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	var health protocol.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &health, nil
}

// formatEvent formats a chat event for terminal output.
func formatEvent(evt protocol.ChatEvent) string {
	ts := time.UnixMilli(evt.Timestamp).Local().Format("15:04:05")
	switch evt.Kind {
	case protocol.EventJoin, protocol.EventLeave:
		return fmt.Sprintf("[%s] --- %s", ts, evt.Content)
	default:
		return fmt.Sprintf("[%s] %s: %s", ts, evt.Nickname, evt.Content)
	}
}

// buildWSURL converts the HTTP server URL into the room's WebSocket URL.
func buildWSURL(server, room, userID, nick string) string {
	u := strings.TrimRight(server, "/")
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	return fmt.Sprintf("%s/ws/%s?userId=%s&nickname=%s",
		u, url.PathEscape(room), url.QueryEscape(userID), url.QueryEscape(nick))
}
