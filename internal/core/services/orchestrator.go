package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ewilliams-labs/songle/internal/core/domain"
	"github.com/ewilliams-labs/songle/internal/core/game"
	"github.com/ewilliams-labs/songle/internal/core/ports"
)

// ErrEmptyGuess is returned when a guess is blank after trimming.
var ErrEmptyGuess = errors.New("service: guess cannot be empty")

// GameView is what callers get back about a hosted game.
type GameView struct {
	ID         string
	PlaylistID string
	State      game.Snapshot
}

// Orchestrator coordinates the playlist provider, the playlist cache and the
// hosted game sessions.
type Orchestrator struct {
	provider ports.PlaylistProvider
	repo     ports.PlaylistRepository
	sessions ports.SessionStore
	engine   *game.Engine
	previews ports.PreviewQueue
	cacheTTL time.Duration

	now   func() time.Time
	newID func() string
}

type Option func(*Orchestrator)

// WithCacheTTL sets how long a cached playlist is served before refetching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) { o.cacheTTL = ttl }
}

// WithPreviewQueue enables background preview measurement for fetched playlists.
func WithPreviewQueue(q ports.PreviewQueue) Option {
	return func(o *Orchestrator) { o.previews = q }
}

// NewOrchestrator constructs an Orchestrator. repo may be nil to disable caching.
func NewOrchestrator(provider ports.PlaylistProvider, repo ports.PlaylistRepository, sessions ports.SessionStore, engine *game.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: provider,
		repo:     repo,
		sessions: sessions,
		engine:   engine,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ResolvePlaylist turns user input (URI, URL or bare ID) into a playlist,
// serving it from the cache when fresh.
func (o *Orchestrator) ResolvePlaylist(ctx context.Context, input string) (domain.Playlist, error) {
	id, err := domain.ExtractPlaylistID(input)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("service: %w", err)
	}
	return o.playlist(ctx, id)
}

func (o *Orchestrator) playlist(ctx context.Context, id string) (domain.Playlist, error) {
	var cached domain.Playlist
	haveCached := false
	if o.repo != nil {
		p, err := o.repo.GetByID(ctx, id)
		switch {
		case err == nil && len(p.Tracks) > 0:
			if !p.Stale(o.now(), o.cacheTTL) {
				return p, nil
			}
			cached, haveCached = p, true
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			log.Warn("service: playlist cache read failed", "playlist", id, "err", err)
		}
	}

	p, err := o.provider.GetPlaylist(ctx, id)
	if err == nil && len(p.Tracks) == 0 {
		err = &ports.PlaylistFetchError{PlaylistID: id, Err: errors.New("playlist returned no tracks")}
	}
	if err != nil {
		if haveCached {
			log.Warn("service: serving stale playlist after fetch failure", "playlist", id, "err", err)
			return cached, nil
		}
		if !errors.Is(err, domain.ErrPlaylistFetch) {
			err = &ports.PlaylistFetchError{PlaylistID: id, Err: err}
		}
		return domain.Playlist{}, fmt.Errorf("service: %w", err)
	}

	if p.ID == "" {
		p.ID = id
	}
	if p.FetchedAt.IsZero() {
		p.FetchedAt = o.now()
	}

	if o.repo != nil {
		if err := o.repo.Save(ctx, p); err != nil {
			log.Warn("service: failed to cache playlist", "playlist", id, "err", err)
		}
	}
	if o.previews != nil {
		for _, t := range p.PlayableTracks() {
			if t.PreviewSeconds == 0 {
				o.previews.Enqueue(t.ID, t.PreviewURL)
			}
		}
	}

	return p, nil
}

// StartGame resolves the playlist and hosts a new game on a random playable track.
func (o *Orchestrator) StartGame(ctx context.Context, input string) (GameView, error) {
	p, err := o.ResolvePlaylist(ctx, input)
	if err != nil {
		return GameView{}, err
	}

	s := game.NewSession()
	if err := o.engine.Start(s, p.Tracks); err != nil {
		return GameView{}, fmt.Errorf("service: %w", err)
	}

	now := o.now()
	g := &ports.HostedGame{
		ID:         o.newID(),
		PlaylistID: p.ID,
		Session:    s,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := o.sessions.Create(ctx, g); err != nil {
		return GameView{}, fmt.Errorf("service: failed to store game: %w", err)
	}

	log.Info("game started", "game", g.ID, "playlist", p.ID, "playable", len(p.PlayableTracks()))
	return o.view(g), nil
}

// RestartGame starts a new round of an existing game on the same playlist.
func (o *Orchestrator) RestartGame(ctx context.Context, id string) (GameView, error) {
	var playlistID string
	if err := o.sessions.Update(ctx, id, func(g *ports.HostedGame) error {
		playlistID = g.PlaylistID
		return nil
	}); err != nil {
		return GameView{}, fmt.Errorf("service: %w", err)
	}

	p, err := o.playlist(ctx, playlistID)
	if err != nil {
		return GameView{}, err
	}

	var view GameView
	err = o.sessions.Update(ctx, id, func(g *ports.HostedGame) error {
		if err := o.engine.Start(g.Session, p.Tracks); err != nil {
			return err
		}
		g.UpdatedAt = o.now()
		view = o.view(g)
		return nil
	})
	if err != nil {
		return GameView{}, fmt.Errorf("service: %w", err)
	}
	return view, nil
}

// Guess submits a guess to a hosted game.
func (o *Orchestrator) Guess(ctx context.Context, id string, text string) (game.GuessResult, GameView, error) {
	if strings.TrimSpace(text) == "" {
		return game.GuessResult{}, GameView{}, ErrEmptyGuess
	}

	var (
		res  game.GuessResult
		view GameView
	)
	err := o.sessions.Update(ctx, id, func(g *ports.HostedGame) error {
		res = o.engine.SubmitGuess(g.Session, text)
		g.UpdatedAt = o.now()
		view = o.view(g)
		return nil
	})
	if err != nil {
		return game.GuessResult{}, GameView{}, fmt.Errorf("service: %w", err)
	}

	if res.Kind == game.KindWon || res.Kind == game.KindLost {
		log.Info("game finished", "game", id, "outcome", res.Kind, "attempts", view.State.Attempts)
	}
	return res, view, nil
}

// Game returns the current snapshot of a hosted game.
func (o *Orchestrator) Game(ctx context.Context, id string) (GameView, error) {
	var view GameView
	err := o.sessions.Update(ctx, id, func(g *ports.HostedGame) error {
		view = o.view(g)
		return nil
	})
	if err != nil {
		return GameView{}, fmt.Errorf("service: %w", err)
	}
	return view, nil
}

// ResetGame puts a hosted game back into the waiting phase.
func (o *Orchestrator) ResetGame(ctx context.Context, id string) (GameView, error) {
	var view GameView
	err := o.sessions.Update(ctx, id, func(g *ports.HostedGame) error {
		o.engine.Reset(g.Session)
		g.UpdatedAt = o.now()
		view = o.view(g)
		return nil
	})
	if err != nil {
		return GameView{}, fmt.Errorf("service: %w", err)
	}
	return view, nil
}

// EndGame forgets a hosted game.
func (o *Orchestrator) EndGame(ctx context.Context, id string) error {
	if err := o.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	return nil
}

// PruneIdle drops hosted games that have not been touched for idle.
func (o *Orchestrator) PruneIdle(ctx context.Context, idle time.Duration) (int, error) {
	n, err := o.sessions.PruneIdle(ctx, o.now().Add(-idle))
	if err != nil {
		return 0, fmt.Errorf("service: %w", err)
	}
	if n > 0 {
		log.Debug("pruned idle games", "count", n)
	}
	return n, nil
}

func (o *Orchestrator) view(g *ports.HostedGame) GameView {
	return GameView{
		ID:         g.ID,
		PlaylistID: g.PlaylistID,
		State:      o.engine.State(g.Session),
	}
}
