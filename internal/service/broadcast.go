package service

// Event types pushed to WebSocket clients.
const (
	EventServerStarted      = "server_started"
	EventPlayerRegistered   = "player_registered"
	EventPlayerUnregistered = "player_unregistered"
	EventTurnAdvanced       = "turn_advanced"
	EventTurnNotification   = "turn_notification"
)

// Broadcaster sends real-time events to connected clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastServerEvent(alias string, eventType string, data any)
	NotifyUser(userID string, eventType string, data any)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastServerEvent(string, string, any) {}
func (NoopBroadcaster) NotifyUser(string, string, any)           {}
