package ports

import (
	"context"
	"fmt"

	"github.com/ewilliams-labs/songle/internal/core/domain"
)

// PlaylistFetchError provides context for a failed playlist lookup.
type PlaylistFetchError struct {
	PlaylistID string
	StatusCode int // upstream HTTP status, 0 when the request never completed
	Err        error
}

func (e *PlaylistFetchError) Error() string {
	msg := fmt.Sprintf("failed to fetch playlist %q", e.PlaylistID)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PlaylistFetchError) Is(target error) bool {
	return target == domain.ErrPlaylistFetch
}

func (e *PlaylistFetchError) Unwrap() error {
	return e.Err
}

// PlaylistProvider resolves a playlist ID to its tracks.
type PlaylistProvider interface {
	GetPlaylist(ctx context.Context, playlistID string) (domain.Playlist, error)
}
