package ports

import (
	"context"

	"github.com/ewilliams-labs/songle/internal/core/domain"
)

// PlaylistRepository caches fetched playlists.
type PlaylistRepository interface {
	GetByID(ctx context.Context, id string) (domain.Playlist, error)
	Save(ctx context.Context, p domain.Playlist) error
	UpdatePreviewSeconds(ctx context.Context, trackID string, seconds float64) error
}
