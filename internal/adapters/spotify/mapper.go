package spotify

import (
	"strings"

	"github.com/ewilliams-labs/songle/internal/core/domain"
)

// mapTrackToDomain converts a raw Spotify track to a clean Domain track.
func mapTrackToDomain(st spotifyTrack) domain.Track {
	// 1. Flatten Artists (List -> String)
	artistNames := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		if a.Name != "" {
			artistNames = append(artistNames, a.Name)
		}
	}

	// 2. Unwrap the nullable preview
	preview := ""
	if st.PreviewURL != nil {
		preview = *st.PreviewURL
	}

	return domain.Track{
		ID:         st.ID,
		Name:       st.Name,
		Artist:     strings.Join(artistNames, ", "),
		Album:      st.Album.Name,
		PreviewURL: preview,
		DurationMs: st.DurationMs,
	}
}

// mapPlaylistToDomain converts a raw Spotify playlist. Removed and local
// items are skipped, and a track listed twice is kept once.
func mapPlaylistToDomain(sp spotifyPlaylist) domain.Playlist {
	p := domain.Playlist{
		ID:     sp.ID,
		Name:   sp.Name,
		Tracks: make([]domain.Track, 0, len(sp.Tracks.Items)),
	}

	for _, item := range sp.Tracks.Items {
		if item.Track == nil || item.Track.IsLocal || item.Track.ID == "" {
			continue
		}
		// ErrDuplicateTrack is the only error AddTrack returns; dropping the repeat is intended.
		_ = p.AddTrack(mapTrackToDomain(*item.Track))
	}

	return p
}
