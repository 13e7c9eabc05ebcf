package rest

import (
	"net/http"

	"github.com/ewilliams-labs/songle/internal/core/game"
	"github.com/ewilliams-labs/songle/internal/core/services"
)

type startGameRequest struct {
	Playlist string `json:"playlist"`
}

type guessRequest struct {
	Guess string `json:"guess"`
}

// songResponse carries only the preview while the round is in play.
type songResponse struct {
	PreviewURL string         `json:"previewUrl"`
	Track      *trackResponse `json:"track,omitempty"`
}

type gameResponse struct {
	ID                string        `json:"id"`
	PlaylistID        string        `json:"playlistId"`
	Phase             game.Phase    `json:"phase"`
	Attempts          int           `json:"attempts"`
	MaxAttempts       int           `json:"maxAttempts"`
	RemainingAttempts int           `json:"remainingAttempts"`
	SnippetSeconds    float64       `json:"snippetSeconds"`
	Song              *songResponse `json:"song,omitempty"`
}

type guessResultResponse struct {
	Kind              game.Kind      `json:"kind"`
	Correct           bool           `json:"correct"`
	Message           string         `json:"message"`
	Hint              game.Hint      `json:"hint,omitempty"`
	Similarity        float64        `json:"similarity"`
	SnippetSeconds    float64        `json:"snippetSeconds,omitempty"`
	RemainingAttempts int            `json:"remainingAttempts"`
	Song              *trackResponse `json:"song,omitempty"`
}

type guessResponse struct {
	Result guessResultResponse `json:"result"`
	Game   gameResponse        `json:"game"`
}

func newGameResponse(v services.GameView) gameResponse {
	resp := gameResponse{
		ID:                v.ID,
		PlaylistID:        v.PlaylistID,
		Phase:             v.State.Phase,
		Attempts:          v.State.Attempts,
		MaxAttempts:       v.State.MaxAttempts,
		RemainingAttempts: v.State.RemainingAttempts,
		SnippetSeconds:    v.State.SnippetLength.Seconds(),
	}
	if s := v.State.Song; s != nil {
		resp.Song = &songResponse{PreviewURL: s.PreviewURL}
		if s.Track != nil {
			t := newTrackResponse(*s.Track)
			resp.Song.Track = &t
		}
	}
	return resp
}

func newGuessResultResponse(res game.GuessResult) guessResultResponse {
	resp := guessResultResponse{
		Kind:              res.Kind,
		Correct:           res.Correct,
		Message:           res.Message,
		Hint:              res.Hint,
		Similarity:        res.Similarity,
		SnippetSeconds:    res.SnippetLength.Seconds(),
		RemainingAttempts: res.RemainingAttempts,
	}
	if res.Song != nil {
		t := newTrackResponse(*res.Song)
		resp.Song = &t
	}
	return resp
}

// StartGame handles POST /api/games
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	view, err := h.svc.StartGame(r.Context(), req.Playlist)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Location", "/api/games/"+view.ID)
	writeJSON(w, http.StatusCreated, newGameResponse(view))
}

// GetGame handles GET /api/games/{id}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Game(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameResponse(view))
}

// SubmitGuess handles POST /api/games/{id}/guesses
func (h *Handler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, view, err := h.svc.Guess(r.Context(), r.PathValue("id"), req.Guess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guessResponse{
		Result: newGuessResultResponse(res),
		Game:   newGameResponse(view),
	})
}

// ResetGame handles POST /api/games/{id}/reset
func (h *Handler) ResetGame(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ResetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameResponse(view))
}

// RestartGame handles POST /api/games/{id}/restart
func (h *Handler) RestartGame(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.RestartGame(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameResponse(view))
}

// EndGame handles DELETE /api/games/{id}
func (h *Handler) EndGame(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EndGame(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
