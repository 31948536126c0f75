package mcp

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

// RESTClient reads room state from the banter server's REST API.
type RESTClient struct {
	BaseURL string
	Room    string
	client  *http.Client
}

// NewRESTClient creates a REST client scoped to one room.
func NewRESTClient(baseURL, room string) *RESTClient {
	return &RESTClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Room:    room,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *RESTClient) get(path string, out any) error {
	u := c.BaseURL + path
	resp, err := c.client.Get(u)
	if err != nil {
		return fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// GetHistory fetches the room's last n events.
func (c *RESTClient) GetHistory(n int) (*protocol.HistoryResponse, error) {
	var hist protocol.HistoryResponse
	if err := c.get(fmt.Sprintf("/api/rooms/%s/history?n=%d", url.PathEscape(c.Room), n), &hist); err != nil {
		return nil, err
	}
	return &hist, nil
}

// GetRooms lists all active rooms.
func (c *RESTClient) GetRooms() (*protocol.RoomList, error) {
	var list protocol.RoomList
	if err := c.get("/api/rooms", &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetRoomInfo fetches this room's summary.
func (c *RESTClient) GetRoomInfo() (*protocol.RoomInfo, error) {
	var info protocol.RoomInfo
	if err := c.get("/api/rooms/"+url.PathEscape(c.Room), &info); err != nil {
		return nil, err
	}
	return &info, nil
}
