package game

import (
	"time"

	"github.com/ewilliams-labs/songle/internal/core/domain"
)

// Kind tells which shape a GuessResult has.
type Kind string

const (
	// KindNotActive: the session was not Playing; nothing changed.
	KindNotActive Kind = "not_active"
	// KindWon: Song is set.
	KindWon Kind = "won"
	// KindLost: the last attempt was used; Song is set.
	KindLost Kind = "lost"
	// KindIncorrect: Hint, Similarity, SnippetLength and RemainingAttempts are set.
	KindIncorrect Kind = "incorrect"
)

// GuessResult is the outcome of SubmitGuess.
type GuessResult struct {
	Kind              Kind
	Correct           bool
	Message           string
	Song              *domain.Track
	Hint              Hint
	Similarity        float64
	SnippetLength     time.Duration
	RemainingAttempts int
}

// SongView is the song as exposed in a Snapshot. Track is nil while in play.
type SongView struct {
	PreviewURL string
	Track      *domain.Track
}

// Snapshot is a read-only view of a Session.
type Snapshot struct {
	Attempts          int
	MaxAttempts       int
	RemainingAttempts int
	SnippetLength     time.Duration
	Phase             Phase
	Song              *SongView
}
