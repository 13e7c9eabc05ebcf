package rest

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/songle/internal/core/domain"
	"github.com/ewilliams-labs/songle/internal/core/services"
)

const (
	errCodeInvalidPlaylist = "INVALID_PLAYLIST_IDENTIFIER"
	errCodeNoPlayable      = "NO_PLAYABLE_TRACKS"
	errCodeFetchFailed     = "PLAYLIST_FETCH_FAILED"
	errCodeGameNotFound    = "GAME_NOT_FOUND"
	errCodeEmptyGuess      = "EMPTY_GUESS"
	errCodeBadRequest      = "BAD_REQUEST"
	errCodeUnsupported     = "UNSUPPORTED_MEDIA_TYPE"
	errCodeInternal        = "INTERNAL"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 16

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("rest: failed to encode response", "err", err)
	}
}

func writeErrorWithCode(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeServiceError maps service errors to a status and code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPlaylistIdentifier):
		writeErrorWithCode(w, http.StatusBadRequest, "Invalid playlist URL or ID", errCodeInvalidPlaylist)
	case errors.Is(err, domain.ErrNoPlayableTracks):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, "No tracks with previews available in this playlist", errCodeNoPlayable)
	case errors.Is(err, domain.ErrPlaylistFetch):
		writeErrorWithCode(w, http.StatusBadGateway, "Failed to fetch playlist", errCodeFetchFailed)
	case errors.Is(err, domain.ErrGameNotFound):
		writeErrorWithCode(w, http.StatusNotFound, "Game not found", errCodeGameNotFound)
	case errors.Is(err, services.ErrEmptyGuess):
		writeErrorWithCode(w, http.StatusBadRequest, "Guess cannot be empty", errCodeEmptyGuess)
	default:
		log.Error("rest: unhandled service error", "err", err)
		writeErrorWithCode(w, http.StatusInternalServerError, "Internal server error", errCodeInternal)
	}
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// decodeJSON reads a JSON body into v, writing the error response itself on
// failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if !isJSONContentType(r) {
		writeErrorWithCode(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", errCodeUnsupported)
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, "Invalid request body", errCodeBadRequest)
		return false
	}
	return true
}
