package ports

import (
	"context"
	"time"

	"github.com/ewilliams-labs/songle/internal/core/game"
)

// HostedGame is a Session plus the bookkeeping a server needs to host it.
type HostedGame struct {
	ID         string
	PlaylistID string
	Session    *game.Session
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SessionStore keeps hosted games isolated from each other. Update runs fn
// while holding that game's lock, so a Session is only ever touched by one
// caller at a time.
type SessionStore interface {
	Create(ctx context.Context, g *HostedGame) error
	Update(ctx context.Context, id string, fn func(g *HostedGame) error) error
	Delete(ctx context.Context, id string) error
	PruneIdle(ctx context.Context, before time.Time) (int, error)
}
