package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gorilla/websocket"

	"github.com/freeeve/domtracker/internal/auth"
	"github.com/freeeve/domtracker/internal/model"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256

	lookupTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by middleware
	},
}

// ServerLookup resolves a tracked server by alias.
type ServerLookup interface {
	GetServer(ctx context.Context, alias string) (*model.GameServer, error)
}

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub     *Hub
	jwtMgr  *auth.JWTManager
	servers ServerLookup
}

// NewWSHandler creates a WSHandler. Subscriptions are only accepted for
// aliases that servers knows about.
func NewWSHandler(hub *Hub, jwtMgr *auth.JWTManager, servers ServerLookup) *WSHandler {
	return &WSHandler{hub: hub, jwtMgr: jwtMgr, servers: servers}
}

// ServeWS handles GET /ws and upgrades to WebSocket. Browsers cannot set
// headers on the handshake, so the access token may come as ?token=.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		var err error
		if tokenStr, err = auth.BearerToken(r); err != nil {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
	}

	claims, err := h.jwtMgr.ValidateToken(tokenStr, auth.AccessToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	userID := claims.UserID()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &WSConn{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufSize),
	}
	h.hub.Register(client)

	h.reply(client, WSEvent{Type: "connected", Data: map[string]string{"user_id": userID}})

	go h.writePump(client)
	go h.readPump(client)

	log.Info().Str("userId", userID).Int("total", h.hub.ConnectionCount()).Msg("WebSocket client connected")
}

// readPump reads messages from the WebSocket connection.
func (h *WSHandler) readPump(c *WSConn) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("userId", c.userID).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("userId", c.userID).Msg("WebSocket unexpected close")
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.reply(c, WSEvent{Type: "error", Data: map[string]string{"error": "malformed message"}})
			continue
		}
		h.handleClientMessage(c, msg)
	}
}

// handleClientMessage applies one subscribe or unsubscribe request. A
// subscribe is answered with the server's current state so the client
// does not have to race a REST fetch against the first turn event.
func (h *WSHandler) handleClientMessage(c *WSConn, msg ClientMessage) {
	if msg.Alias == "" {
		h.reply(c, WSEvent{Type: "error", Data: map[string]string{"error": "alias is required"}})
		return
	}

	switch msg.Action {
	case "subscribe":
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		server, err := h.servers.GetServer(ctx, msg.Alias)
		cancel()
		if err != nil {
			status := errorStatus(err)
			text := err.Error()
			if status == http.StatusInternalServerError {
				log.Error().Err(err).Str("alias", msg.Alias).Msg("Subscribe lookup failed")
				text = "internal error"
			}
			h.reply(c, WSEvent{Type: "error", Alias: msg.Alias, Data: map[string]string{"error": text}})
			return
		}
		h.hub.Subscribe(c, msg.Alias)
		h.reply(c, WSEvent{Type: "subscribed", Alias: msg.Alias, Data: server})
	case "unsubscribe":
		h.hub.Unsubscribe(c, msg.Alias)
		h.reply(c, WSEvent{Type: "unsubscribed", Alias: msg.Alias})
	default:
		h.reply(c, WSEvent{Type: "error", Alias: msg.Alias, Data: map[string]string{"error": "unknown action " + msg.Action}})
	}
}

// reply queues event for c alone, dropping it if the send buffer is full.
func (h *WSHandler) reply(c *WSConn, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal WebSocket reply")
		return
	}
	select {
	case c.send <- data:
	default:
		log.Warn().Str("userId", c.userID).Str("type", event.Type).Msg("WebSocket send buffer full, dropping reply")
	}
}

// writePump writes messages to the WebSocket connection.
func (h *WSHandler) writePump(c *WSConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same write
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
