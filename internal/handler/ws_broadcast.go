package handler

import "github.com/freeeve/domtracker/internal/service"

var _ service.Broadcaster = (*Hub)(nil)

// BroadcastServerEvent implements service.Broadcaster using the WebSocket hub.
func (h *Hub) BroadcastServerEvent(alias string, eventType string, data any) {
	h.BroadcastToServer(alias, WSEvent{Type: eventType, Alias: alias, Data: data})
}

// NotifyUser implements service.Broadcaster for per-player notifications.
func (h *Hub) NotifyUser(userID string, eventType string, data any) {
	event := WSEvent{Type: eventType, Data: data}
	if m, ok := data.(map[string]any); ok {
		event.Alias, _ = m["alias"].(string)
	}
	h.BroadcastToUser(userID, event)
}
