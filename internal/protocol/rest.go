package protocol

// RoomInfo summarizes an active room for the REST listing endpoints.
type RoomInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreatedAt    int64  `json:"createdAt"`
	UserCount    int    `json:"userCount"`
	MessageCount int    `json:"messageCount"`
}

// RoomList is the response for GET /api/rooms.
type RoomList struct {
	Rooms []RoomInfo `json:"rooms"`
}

// HistoryResponse is the response for GET /api/rooms/{room}/history.
type HistoryResponse struct {
	Room     string      `json:"room"`
	Messages []ChatEvent `json:"messages"`
	Count    int         `json:"count"`
}

// HealthResponse is the response for GET /api/health. Rooms, Users and
// Messages aggregate across every active room.
type HealthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	Rooms         int     `json:"rooms"`
	Users         int     `json:"users"`
	Messages      int     `json:"messages"`
}
