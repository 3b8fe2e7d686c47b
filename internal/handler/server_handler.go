package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/freeeve/domtracker/internal/auth"
	"github.com/freeeve/domtracker/internal/model"
	"github.com/freeeve/domtracker/internal/service"
	"github.com/freeeve/domtracker/pkg/dominions"
)

// ServerHandler handles game server endpoints.
type ServerHandler struct {
	svc *service.ServerService
}

// NewServerHandler creates a ServerHandler.
func NewServerHandler(svc *service.ServerService) *ServerHandler {
	return &ServerHandler{svc: svc}
}

// CreateServer handles POST /servers
func (h *ServerHandler) CreateServer(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Alias       string        `json:"alias"`
		Era         dominions.Era `json:"era"`
		PlayerCount int           `json:"player_count"`
		Description string        `json:"description,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	server, err := h.svc.CreateLobby(r.Context(), strings.ToLower(req.Alias), req.Era, req.PlayerCount, userID, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, server)
}

// ListServers handles GET /servers
func (h *ServerHandler) ListServers(w http.ResponseWriter, r *http.Request) {
	servers, err := h.svc.ListServers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if servers == nil {
		servers = []model.GameServer{}
	}
	writeJSON(w, http.StatusOK, servers)
}

// GetServer handles GET /servers/{alias}
func (h *ServerHandler) GetServer(w http.ResponseWriter, r *http.Request) {
	details, err := h.svc.Details(r.Context(), r.PathValue("alias"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// DeleteServer handles DELETE /servers/{alias}
func (h *ServerHandler) DeleteServer(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if err := h.svc.DeleteServer(r.Context(), r.PathValue("alias"), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartServer handles POST /servers/{alias}/start
func (h *ServerHandler) StartServer(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Address string `json:"address"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	server, err := h.svc.Start(r.Context(), r.PathValue("alias"), strings.TrimSpace(req.Address), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, server)
}

// Register handles POST /servers/{alias}/players
func (h *ServerHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Nation   string  `json:"nation"`
		NationID *uint32 `json:"nation_id,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	spec, ok := nationSpecifier(req.Nation, req.NationID)
	if !ok {
		writeError(w, http.StatusBadRequest, "nation or nation_id is required")
		return
	}

	reg, err := h.svc.Register(r.Context(), r.PathValue("alias"), userID, spec)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// Unregister handles DELETE /servers/{alias}/players/me
func (h *ServerHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if err := h.svc.Unregister(r.Context(), r.PathValue("alias"), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Snapshot handles GET /servers/{alias}/snapshot
func (h *ServerHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	game, err := h.svc.Snapshot(r.Context(), r.PathValue("alias"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// nationSpecifier prefers an explicit id, then a numeric nation string,
// then a name prefix.
func nationSpecifier(nation string, id *uint32) (dominions.NationSpecifier, bool) {
	if id != nil {
		return dominions.ByID(*id), true
	}
	nation = strings.TrimSpace(nation)
	if nation == "" {
		return dominions.NationSpecifier{}, false
	}
	if n, err := strconv.ParseUint(nation, 10, 32); err == nil {
		return dominions.ByID(uint32(n)), true
	}
	return dominions.ByName(nation), true
}
