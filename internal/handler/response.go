package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/domtracker/internal/repository"
	redisrepo "github.com/freeeve/domtracker/internal/repository/redis"
	"github.com/freeeve/domtracker/internal/service"
	"github.com/freeeve/domtracker/pkg/dominions"
)

// writeJSON writes a JSON response with the given status code. The body is
// encoded before the header goes out so an encoding failure becomes a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Error encoding response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads and decodes JSON from a request body.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// errorStatus maps domain and service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrServerNotFound):
		return http.StatusNotFound
	case errors.Is(err, dominions.ErrNotFound), errors.Is(err, dominions.ErrAmbiguous),
		errors.Is(err, service.ErrInvalidAlias), errors.Is(err, service.ErrMissingAddress),
		errors.Is(err, dominions.ErrInvalidLobby):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, dominions.ErrAlreadyStarted), errors.Is(err, dominions.ErrNotStarted),
		errors.Is(err, dominions.ErrLobbyFull), errors.Is(err, dominions.ErrNationTaken),
		errors.Is(err, dominions.ErrCapacityExceeded), errors.Is(err, service.ErrNotRegistered),
		errors.Is(err, repository.ErrAliasTaken), errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, dominions.ErrRemoteFetchFailed), errors.Is(err, dominions.ErrIdentityResolutionFailed):
		return http.StatusBadGateway
	case errors.Is(err, redisrepo.ErrLockTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Unexpected errors
// are logged and their details hidden.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
