package rest

import (
	"net/http"

	"github.com/ewilliams-labs/songle/internal/core/domain"
)

type trackResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Artist         string  `json:"artist"`
	PreviewURL     string  `json:"previewUrl,omitempty"`
	Duration       int     `json:"duration"`
	PreviewSeconds float64 `json:"previewSeconds,omitempty"`
}

// playlistTrackResponse omits the preview URL. Running games expose only that
// URL, so it must never appear next to a name.
type playlistTrackResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Artist         string  `json:"artist"`
	Playable       bool    `json:"playable"`
	Duration       int     `json:"duration"`
	PreviewSeconds float64 `json:"previewSeconds,omitempty"`
}

type playlistResponse struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name"`
	Playable int                     `json:"playable"`
	Tracks   []playlistTrackResponse `json:"tracks"`
}

func newTrackResponse(t domain.Track) trackResponse {
	return trackResponse{
		ID:             t.ID,
		Name:           t.Name,
		Artist:         t.Artist,
		PreviewURL:     t.PreviewURL,
		Duration:       t.DurationMs,
		PreviewSeconds: t.PreviewSeconds,
	}
}

func newPlaylistTrackResponse(t domain.Track) playlistTrackResponse {
	return playlistTrackResponse{
		ID:             t.ID,
		Name:           t.Name,
		Artist:         t.Artist,
		Playable:       t.Playable(),
		Duration:       t.DurationMs,
		PreviewSeconds: t.PreviewSeconds,
	}
}

// GetPlaylist handles GET /api/playlist/{id}
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.svc.ResolvePlaylist(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := playlistResponse{
		ID:       playlist.ID,
		Name:     playlist.Name,
		Playable: len(playlist.PlayableTracks()),
		Tracks:   make([]playlistTrackResponse, 0, len(playlist.Tracks)),
	}
	for _, t := range playlist.Tracks {
		resp.Tracks = append(resp.Tracks, newPlaylistTrackResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}
