// Package game implements the guessing-game rules: song selection, attempt
// tracking, snippet progression, guess scoring and win/loss decisions.
//
// An Engine holds only configuration. All mutable state lives in a Session
// owned by whoever hosts the game, and every Engine operation takes that
// Session explicitly.
package game

import "github.com/ewilliams-labs/songle/internal/core/domain"

// Phase is the coarse lifecycle state of a Session.
type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhasePlaying Phase = "playing"
	PhaseWon     Phase = "won"
	PhaseLost    Phase = "lost"
)

// Terminal reports whether the phase only leaves through Reset or Start.
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost
}

// Session is the state of one game. The zero value is a Waiting session.
// A Session is not safe for concurrent use.
type Session struct {
	song     *domain.Track
	attempts int
	phase    Phase
}

// NewSession returns an empty Waiting session.
func NewSession() *Session {
	return &Session{phase: PhaseWaiting}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	if s.phase == "" {
		return PhaseWaiting
	}
	return s.phase
}

// Attempts returns the number of incorrect guesses so far.
func (s *Session) Attempts() int {
	return s.attempts
}

func (s *Session) clear() {
	s.song = nil
	s.attempts = 0
	s.phase = PhaseWaiting
}
