package domain

import "errors"

var (
	ErrNotFound = errors.New("domain: not found")

	// ErrInvalidPlaylistIdentifier is returned when user input matches none of
	// the accepted playlist forms.
	ErrInvalidPlaylistIdentifier = errors.New("domain: invalid playlist identifier")
	// ErrPlaylistFetch is returned when the upstream lookup failed or returned no usable data.
	ErrPlaylistFetch = errors.New("domain: playlist fetch failed")
	// ErrNoPlayableTracks is returned when no track in a playlist has a preview clip.
	ErrNoPlayableTracks = errors.New("domain: no playable tracks")

	ErrGameNotFound = errors.New("domain: game not found")
)
