package handler

import (
	"net/http"

	"github.com/freeeve/domtracker/internal/auth"
	"github.com/freeeve/domtracker/internal/service"
)

// PlayerHandler handles the signed-in player's preferences.
type PlayerHandler struct {
	svc *service.ServerService
}

// NewPlayerHandler creates a PlayerHandler.
func NewPlayerHandler(svc *service.ServerService) *PlayerHandler {
	return &PlayerHandler{svc: svc}
}

// GetMe handles GET /players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Player(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateMe handles PATCH /players/me
func (h *PlayerHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TurnNotifications *bool `json:"turn_notifications"`
	}
	if err := decodeJSON(r, &req); err != nil || req.TurnNotifications == nil {
		writeError(w, http.StatusBadRequest, "turn_notifications is required")
		return
	}

	p, err := h.svc.SetTurnNotifications(r.Context(), auth.UserIDFromContext(r.Context()), *req.TurnNotifications)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
