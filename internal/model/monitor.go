package model

// -----------------------------------------------------------------
// Monitor API Response Models
// -----------------------------------------------------------------

// MonitorResponse is the main response for the monitor API
type MonitorResponse struct {
	Status      string          `json:"status"` // "healthy", "idle"
	Connections ConnectionStats `json:"connections"`
	Rooms       RoomStats       `json:"rooms"`
	Clients     []ClientInfo    `json:"clients"`
}

// ConnectionStats holds connection-related statistics
type ConnectionStats struct {
	OnlineUsers      int `json:"onlineUsers"`      // Distinct users with a live connection
	TotalConnections int `json:"totalConnections"` // Live connections, counting every tab
}

// RoomStats holds room statistics
type RoomStats struct {
	TotalRooms  int        `json:"totalRooms"`
	RoomDetails []RoomInfo `json:"roomDetails"`
}

// RoomInfo contains information about a single room
type RoomInfo struct {
	Room        string `json:"room"`
	Connections int    `json:"connections"`
}

// ClientInfo contains information about a connected client
type ClientInfo struct {
	ConnID string `json:"connId"`
	UserID int64  `json:"userId"`
}
