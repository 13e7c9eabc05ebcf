package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ewilliams-labs/songle/internal/core/domain"
)

const DefaultMaxAttempts = 6

// DefaultSnippetLengths are the seconds of audio revealed per attempt.
var DefaultSnippetLengths = []time.Duration{
	3 * time.Second,
	5 * time.Second,
	7 * time.Second,
	10 * time.Second,
	15 * time.Second,
	20 * time.Second,
}

var ErrInvalidConfig = errors.New("game: invalid engine config")

// Rand picks the song index. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Engine applies the game rules to a Session. It keeps no per-game state, so
// one Engine can serve any number of sessions as long as each Session is
// driven by one caller at a time.
type Engine struct {
	maxAttempts    int
	snippetLengths []time.Duration
	rng            Rand
}

type Option func(*Engine)

func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

func WithSnippetLengths(lengths []time.Duration) Option {
	return func(e *Engine) {
		e.snippetLengths = append([]time.Duration(nil), lengths...)
	}
}

// WithRand injects the random source used to choose a song.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// New builds an Engine. Snippet lengths must be positive, strictly increasing
// and at least as many as the allowed attempts.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		maxAttempts:    DefaultMaxAttempts,
		snippetLengths: append([]time.Duration(nil), DefaultSnippetLengths...),
		rng:            globalRand{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.maxAttempts < 1 {
		return nil, fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidConfig, e.maxAttempts)
	}
	if len(e.snippetLengths) < e.maxAttempts {
		return nil, fmt.Errorf("%w: %d snippet lengths for %d attempts", ErrInvalidConfig, len(e.snippetLengths), e.maxAttempts)
	}
	for i, l := range e.snippetLengths {
		if l <= 0 {
			return nil, fmt.Errorf("%w: snippet length %d is not positive", ErrInvalidConfig, i)
		}
		if i > 0 && l <= e.snippetLengths[i-1] {
			return nil, fmt.Errorf("%w: snippet lengths must increase", ErrInvalidConfig)
		}
	}
	if e.rng == nil {
		e.rng = globalRand{}
	}

	return e, nil
}

// MaxAttempts returns the number of wrong guesses that ends a game.
func (e *Engine) MaxAttempts() int {
	return e.maxAttempts
}

// Start picks a song uniformly from the tracks that have a preview and puts the
// session in play. Starting over a session in any phase replaces it. When no
// track is playable the session is left untouched and ErrNoPlayableTracks is returned.
func (e *Engine) Start(s *Session, tracks []domain.Track) error {
	playable := make([]domain.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.Playable() {
			playable = append(playable, t)
		}
	}
	if len(playable) == 0 {
		return domain.ErrNoPlayableTracks
	}

	song := playable[e.rng.IntN(len(playable))]
	s.song = &song
	s.attempts = 0
	s.phase = PhasePlaying
	return nil
}

// SnippetLength is how much audio to play for the current attempt. The index
// is clamped to the last configured length.
func (e *Engine) SnippetLength(s *Session) time.Duration {
	return e.snippetLengths[min(s.attempts, len(e.snippetLengths)-1)]
}

// SubmitGuess scores a guess against the current song and advances the session.
func (e *Engine) SubmitGuess(s *Session, text string) GuessResult {
	if s.Phase() != PhasePlaying || s.song == nil {
		return GuessResult{
			Kind:    KindNotActive,
			Message: "Game is not in active state",
		}
	}

	guess := normalize(text)
	answer := normalize(s.song.Name)
	song := *s.song

	if guess == answer {
		s.phase = PhaseWon
		return GuessResult{
			Kind:    KindWon,
			Correct: true,
			Message: fmt.Sprintf("Congratulations! You guessed correctly: \"%s\" by %s", song.Name, song.Artist),
			Song:    &song,
		}
	}

	s.attempts++
	if s.attempts >= e.maxAttempts {
		s.phase = PhaseLost
		return GuessResult{
			Kind:    KindLost,
			Message: fmt.Sprintf("Game Over! The song was \"%s\" by %s", song.Name, song.Artist),
			Song:    &song,
		}
	}

	score := Similarity(guess, answer)
	hint := HintFor(score)
	remaining := e.maxAttempts - s.attempts

	msg := "Incorrect guess."
	if txt := hint.Text(); txt != "" {
		msg += " " + txt
	}
	msg += fmt.Sprintf(" You have %d attempts remaining.", remaining)

	return GuessResult{
		Kind:              KindIncorrect,
		Message:           msg,
		Hint:              hint,
		Similarity:        score,
		SnippetLength:     e.SnippetLength(s),
		RemainingAttempts: remaining,
	}
}

// Reset returns the session to Waiting from any phase.
func (e *Engine) Reset(s *Session) {
	s.clear()
}

// State returns a read-only view of the session. While a game is in play the
// view carries only the preview URL, never the answer.
func (e *Engine) State(s *Session) Snapshot {
	snap := Snapshot{
		Attempts:          s.attempts,
		MaxAttempts:       e.maxAttempts,
		RemainingAttempts: e.maxAttempts - s.attempts,
		SnippetLength:     e.SnippetLength(s),
		Phase:             s.Phase(),
	}

	if s.song == nil {
		return snap
	}

	switch snap.Phase {
	case PhasePlaying:
		snap.Song = &SongView{PreviewURL: s.song.PreviewURL}
	case PhaseWon, PhaseLost:
		song := *s.song
		snap.Song = &SongView{
			PreviewURL: song.PreviewURL,
			Track:      &song,
		}
	}

	return snap
}
