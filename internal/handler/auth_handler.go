package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/domtracker/internal/auth"
	"github.com/freeeve/domtracker/internal/service"
)

const stateCookie = "oauth_state"

// AuthHandler handles Discord login and token refresh.
type AuthHandler struct {
	discord *auth.OAuthProvider
	jwtMgr  *auth.JWTManager
	svc     *service.ServerService
	devMode bool
}

// NewAuthHandler creates an AuthHandler. devMode enables /auth/dev.
func NewAuthHandler(discord *auth.OAuthProvider, jwtMgr *auth.JWTManager, svc *service.ServerService, devMode bool) *AuthHandler {
	return &AuthHandler{discord: discord, jwtMgr: jwtMgr, svc: svc, devMode: devMode}
}

// DiscordLogin redirects to Discord's OAuth2 consent screen.
func (h *AuthHandler) DiscordLogin(w http.ResponseWriter, r *http.Request) {
	state := randomState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.discord.LoginURL(state), http.StatusTemporaryRedirect)
}

// DiscordCallback handles the OAuth2 callback from Discord.
func (h *AuthHandler) DiscordCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code parameter")
		return
	}

	user, err := h.discord.Exchange(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "oauth exchange failed: "+err.Error())
		return
	}
	h.issueTokens(w, r, user.ID)
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := h.jwtMgr.ValidateToken(req.RefreshToken, auth.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	tokens, err := h.jwtMgr.GenerateTokenPair(claims.UserID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// DevLogin issues tokens for an arbitrary Discord user id without OAuth.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	if !h.devMode {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id parameter")
		return
	}
	h.issueTokens(w, r, userID)
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.svc.EnsurePlayer(r.Context(), userID); err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("Failed to record player")
		writeError(w, http.StatusInternalServerError, "failed to create player")
		return
	}

	tokens, err := h.jwtMgr.GenerateTokenPair(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func randomState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
