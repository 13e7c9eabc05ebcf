package domain

import (
	"errors"
	"time"
)

var ErrDuplicateTrack = errors.New("domain: duplicate track")

type Playlist struct {
	ID        string
	Name      string
	Tracks    []Track
	FetchedAt time.Time
}

func NewPlaylist(id, name string) (*Playlist, error) {
	if id == "" {
		return nil, errors.New("domain: invalid argument")
	}
	return &Playlist{
		ID:     id,
		Name:   name,
		Tracks: []Track{},
	}, nil
}

// AddTrack appends a track to the playlist while preventing duplicate entries.
// A playlist may list the same song more than once; keeping a single copy stops
// repeated entries from weighting the random pick.
func (p *Playlist) AddTrack(t Track) error {
	if t.ID != "" {
		for _, ex := range p.Tracks {
			if ex.ID == t.ID {
				return ErrDuplicateTrack
			}
		}
	}
	p.Tracks = append(p.Tracks, t)
	return nil
}

// PlayableTracks returns the tracks that have a preview clip, in playlist order.
func (p Playlist) PlayableTracks() []Track {
	out := make([]Track, 0, len(p.Tracks))
	for _, t := range p.Tracks {
		if t.Playable() {
			out = append(out, t)
		}
	}
	return out
}

// Stale reports whether the playlist was fetched longer than ttl ago.
// A zero ttl never expires.
func (p Playlist) Stale(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return p.FetchedAt.IsZero() || now.Sub(p.FetchedAt) > ttl
}
