// Package memory provides an in-process implementation of the session store port.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ewilliams-labs/songle/internal/core/domain"
	"github.com/ewilliams-labs/songle/internal/core/ports"
)

var errDuplicateID = errors.New("memory store: duplicate game id")

type entry struct {
	mu   sync.Mutex
	game *ports.HostedGame
	gone bool // set once deleted, so a caller that raced Delete sees not found
}

// Store keeps hosted games in a map. The map lock only guards membership;
// each game has its own lock so games never block one another.
type Store struct {
	mu    sync.RWMutex
	games map[string]*entry
}

// compile-time interface assertion
var _ ports.SessionStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{games: make(map[string]*entry)}
}

func (s *Store) Create(ctx context.Context, g *ports.HostedGame) error {
	if g == nil || g.ID == "" || g.Session == nil {
		return errors.New("memory store: invalid game")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; ok {
		return errDuplicateID
	}
	s.games[g.ID] = &entry{game: g}
	return nil
}

func (s *Store) Update(ctx context.Context, id string, fn func(g *ports.HostedGame) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	e, ok := s.games[id]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrGameNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return domain.ErrGameNotFound
	}
	return fn(e.game)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.games[id]
	if ok {
		delete(s.games, id)
	}
	s.mu.Unlock()
	if !ok {
		return domain.ErrGameNotFound
	}

	e.mu.Lock()
	e.gone = true
	e.mu.Unlock()
	return nil
}

// PruneIdle removes games last updated before the cutoff and returns how many went.
func (s *Store) PruneIdle(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.games {
		if !e.mu.TryLock() {
			// in use right now, so not idle
			continue
		}
		if e.game.UpdatedAt.Before(before) {
			e.gone = true
			delete(s.games, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed, nil
}

// Len reports how many games are hosted.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
