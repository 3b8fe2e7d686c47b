package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/domtracker/internal/metrics"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type  string `json:"type"`
	Alias string `json:"alias,omitempty"`
	Data  any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	Alias  string `json:"alias"`
}

// WSConn wraps a WebSocket connection with its user and subscriptions.
type WSConn struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub manages WebSocket connections and per-server subscriptions.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	servers     map[string]map[*WSConn]bool // alias -> set of connections
	metrics     *metrics.Metrics
}

// NewHub creates a new Hub. m may be nil.
func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		servers:     make(map[string]map[*WSConn]bool),
		metrics:     m,
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
	h.metrics.IncConnections()
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connections[c] {
		return
	}
	delete(h.connections, c)
	for alias, conns := range h.servers {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.servers, alias)
		}
	}
	close(c.send)
	h.metrics.DecConnections()
}

// Subscribe adds a connection to a server channel.
func (h *Hub) Subscribe(c *WSConn, alias string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.servers[alias] == nil {
		h.servers[alias] = make(map[*WSConn]bool)
	}
	h.servers[alias][c] = true
}

// Unsubscribe removes a connection from a server channel.
func (h *Hub) Unsubscribe(c *WSConn, alias string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.servers[alias]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.servers, alias)
		}
	}
}

// BroadcastToServer sends an event to all connections subscribed to alias.
func (h *Hub) BroadcastToServer(alias string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("alias", alias).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.servers[alias] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("userId", c.userID).Str("alias", alias).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// BroadcastToUser sends an event to a specific user across all their connections.
func (h *Hub) BroadcastToUser(userID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections {
		if c.userID == userID {
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// SubscriberCount returns the number of connections subscribed to alias.
func (h *Hub) SubscriberCount(alias string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.servers[alias])
}
