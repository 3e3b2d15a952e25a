package hub

import "Chatline/internal/model"

// MonitorService provides methods to gather hub statistics
type MonitorService struct {
	hub *Hub
}

// NewMonitorService creates a new monitor service
func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats gathers and returns all hub statistics
func (ms *MonitorService) GetStats() model.MonitorResponse {
	connections := model.ConnectionStats{
		OnlineUsers:      ms.hub.presence.OnlineCount(),
		TotalConnections: ms.hub.presence.ConnectionCount(),
	}

	var clients []model.ClientInfo
	ms.hub.presence.Each(func(userID int64, connID string) {
		clients = append(clients, model.ClientInfo{ConnID: connID, UserID: userID})
	})

	roomDetails := ms.hub.rooms.Stats()

	status := "healthy"
	if connections.TotalConnections == 0 {
		status = "idle"
	}

	return model.MonitorResponse{
		Status:      status,
		Connections: connections,
		Rooms: model.RoomStats{
			TotalRooms:  len(roomDetails),
			RoomDetails: roomDetails,
		},
		Clients: clients,
	}
}
