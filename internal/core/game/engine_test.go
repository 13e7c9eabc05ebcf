package game

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/ewilliams-labs/songle/internal/core/domain"
)

// fixedRand always picks the same index.
type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

var alpha = domain.Track{ID: "t1", Name: "Alpha", Artist: "The Letters", PreviewURL: "https://p.test/alpha.mp3", DurationMs: 180000}

func startedSession(t *testing.T, e *Engine, tracks ...domain.Track) *Session {
	t.Helper()
	s := NewSession()
	if err := e.Start(s, tracks); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "defaults", opts: nil},
		{name: "fewer attempts than lengths", opts: []Option{WithMaxAttempts(3)}},
		{name: "zero attempts", opts: []Option{WithMaxAttempts(0)}, wantErr: true},
		{name: "more attempts than lengths", opts: []Option{WithMaxAttempts(7)}, wantErr: true},
		{
			name:    "non increasing lengths",
			opts:    []Option{WithSnippetLengths([]time.Duration{1, 2, 2, 3, 4, 5})},
			wantErr: true,
		},
		{
			name:    "non positive length",
			opts:    []Option{WithMaxAttempts(1), WithSnippetLengths([]time.Duration{0})},
			wantErr: true,
		},
		{name: "nil rand falls back", opts: []Option{WithRand(nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEngine_Start(t *testing.T) {
	noPreview := domain.Track{ID: "t2", Name: "Beta", Artist: "B"}

	tests := []struct {
		name      string
		tracks    []domain.Track
		wantErr   error
		wantPhase Phase
	}{
		{name: "single playable", tracks: []domain.Track{alpha}, wantPhase: PhasePlaying},
		{name: "mixed list", tracks: []domain.Track{noPreview, alpha}, wantPhase: PhasePlaying},
		{name: "no previews", tracks: []domain.Track{noPreview}, wantErr: domain.ErrNoPlayableTracks, wantPhase: PhaseWaiting},
		{name: "empty list", tracks: nil, wantErr: domain.ErrNoPlayableTracks, wantPhase: PhaseWaiting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			s := NewSession()

			err := e.Start(s, tt.tracks)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error: got %v, want %v", err, tt.wantErr)
			}
			if s.Phase() != tt.wantPhase {
				t.Fatalf("phase: got %s, want %s", s.Phase(), tt.wantPhase)
			}
			if s.Attempts() != 0 {
				t.Fatalf("attempts: got %d, want 0", s.Attempts())
			}
			if tt.wantErr == nil && s.song.ID != alpha.ID {
				t.Fatalf("song: got %q, want %q", s.song.ID, alpha.ID)
			}
		})
	}
}

func TestEngine_StartFailureKeepsPriorSession(t *testing.T) {
	e := newTestEngine(t)
	s := startedSession(t, e, alpha)
	e.SubmitGuess(s, "wrong")

	if err := e.Start(s, []domain.Track{{ID: "x", Name: "No Preview"}}); !errors.Is(err, domain.ErrNoPlayableTracks) {
		t.Fatalf("expected ErrNoPlayableTracks, got %v", err)
	}
	if s.Phase() != PhasePlaying || s.Attempts() != 1 || s.song.ID != alpha.ID {
		t.Fatalf("session changed after failed start: phase=%s attempts=%d", s.Phase(), s.Attempts())
	}
}

func TestEngine_StartOverwritesRunningGame(t *testing.T) {
	e := newTestEngine(t)
	s := startedSession(t, e, alpha)
	e.SubmitGuess(s, "wrong")
	e.SubmitGuess(s, "wrong again")

	beta := domain.Track{ID: "t2", Name: "Beta", Artist: "B", PreviewURL: "https://p.test/beta.mp3"}
	if err := e.Start(s, []domain.Track{beta}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if s.Attempts() != 0 || s.Phase() != PhasePlaying || s.song.ID != beta.ID {
		t.Fatalf("restart did not replace session: %+v", s)
	}
}

func TestEngine_StartIsUniform(t *testing.T) {
	e := newTestEngine(t, WithRand(rand.New(rand.NewPCG(42, 7))))
	tracks := []domain.Track{
		{ID: "a", Name: "A", PreviewURL: "u"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C", PreviewURL: "u"},
		{ID: "d", Name: "D", PreviewURL: "u"},
	}

	const runs = 3000
	counts := map[string]int{}
	for i := 0; i < runs; i++ {
		s := NewSession()
		if err := e.Start(s, tracks); err != nil {
			t.Fatalf("start: %v", err)
		}
		counts[s.song.ID]++
	}

	if counts["b"] != 0 {
		t.Fatalf("unplayable track was chosen %d times", counts["b"])
	}
	for _, id := range []string{"a", "c", "d"} {
		if counts[id] < 800 || counts[id] > 1200 {
			t.Fatalf("track %s chosen %d/%d times, want about a third", id, counts[id], runs)
		}
	}
}

func TestEngine_SnippetLength(t *testing.T) {
	e := newTestEngine(t)
	s := NewSession()

	prev := time.Duration(0)
	for attempts := 0; attempts <= 9; attempts++ {
		s.attempts = attempts
		got := e.SnippetLength(s)

		idx := attempts
		if idx > 5 {
			idx = 5
		}
		if got != DefaultSnippetLengths[idx] {
			t.Fatalf("attempts=%d: got %v, want %v", attempts, got, DefaultSnippetLengths[idx])
		}
		if got < prev {
			t.Fatalf("attempts=%d: length decreased from %v to %v", attempts, prev, got)
		}
		prev = got
	}
}

func TestEngine_SubmitGuess_Normalization(t *testing.T) {
	song := domain.Track{ID: "x", Name: "Song X", Artist: "Band", PreviewURL: "u"}
	for _, guess := range []string{"Song X", "song x", "  song x  ", "SONG X\t"} {
		t.Run(guess, func(t *testing.T) {
			e := newTestEngine(t)
			s := startedSession(t, e, song)

			res := e.SubmitGuess(s, guess)
			if !res.Correct || res.Kind != KindWon {
				t.Fatalf("guess %q: got %+v", guess, res)
			}
		})
	}
}

func TestEngine_ScenarioWin(t *testing.T) {
	e := newTestEngine(t)
	s := startedSession(t, e, alpha)

	res := e.SubmitGuess(s, "Alpha")
	if !res.Correct || res.Kind != KindWon {
		t.Fatalf("expected win, got %+v", res)
	}
	if s.Phase() != PhaseWon {
		t.Fatalf("phase: got %s, want won", s.Phase())
	}
	want := `Congratulations! You guessed correctly: "Alpha" by The Letters`
	if res.Message != want {
		t.Fatalf("message: got %q, want %q", res.Message, want)
	}
	if res.Song == nil || res.Song.ID != alpha.ID {
		t.Fatalf("song details missing: %+v", res.Song)
	}
	if s.Attempts() != 0 {
		t.Fatalf("winning guess changed attempts to %d", s.Attempts())
	}
}

func TestEngine_ScenarioLoss(t *testing.T) {
	e := newTestEngine(t)
	s := startedSession(t, e, alpha)

	var res GuessResult
	for i := 1; i <= 6; i++ {
		res = e.SubmitGuess(s, "Beta")
		if i < 6 {
			if res.Kind != KindIncorrect {
				t.Fatalf("guess %d: kind %s, want incorrect", i, res.Kind)
			}
			if res.RemainingAttempts != 6-i {
				t.Fatalf("guess %d: remaining %d, want %d", i, res.RemainingAttempts, 6-i)
			}
			if res.SnippetLength != DefaultSnippetLengths[i] {
				t.Fatalf("guess %d: snippet %v, want %v", i, res.SnippetLength, DefaultSnippetLengths[i])
			}
		}
	}

	if res.Kind != KindLost || res.Correct {
		t.Fatalf("expected loss, got %+v", res)
	}
	if !strings.Contains(res.Message, `"Alpha"`) {
		t.Fatalf("loss message does not reveal answer: %q", res.Message)
	}
	if s.Phase() != PhaseLost || s.Attempts() != 6 {
		t.Fatalf("phase=%s attempts=%d, want lost/6", s.Phase(), s.Attempts())
	}

	after := e.SubmitGuess(s, "Alpha")
	if after.Kind != KindNotActive || after.Correct {
		t.Fatalf("guess after loss: %+v", after)
	}
	if s.Attempts() != 6 || s.Phase() != PhaseLost {
		t.Fatalf("state mutated after loss: phase=%s attempts=%d", s.Phase(), s.Attempts())
	}
}

func TestEngine_ScenarioBoundaryHint(t *testing.T) {
	e := newTestEngine(t)
	s := startedSession(t, e, alpha)

	res := e.SubmitGuess(s, "Alph")
	if res.Kind != KindIncorrect {
		t.Fatalf("kind: got %s", res.Kind)
	}
	if res.Similarity != 0.8 {
		t.Fatalf("similarity: got %v, want 0.8", res.Similarity)
	}
	if res.Hint != HintWarmer {
		t.Fatalf("hint: got %q, want %q", res.Hint, HintWarmer)
	}
	want := "Incorrect guess. You're getting warmer! You have 5 attempts remaining."
	if res.Message != want {
		t.Fatalf("message: got %q, want %q", res.Message, want)
	}
}

func TestEngine_IncorrectWithoutHint(t *testing.T) {
	e := newTestEngine(t)
	s := startedSession(t, e, alpha)

	res := e.SubmitGuess(s, "zzzzzzzzzz")
	if res.Hint != HintNone {
		t.Fatalf("hint: got %q, want none", res.Hint)
	}
	want := "Incorrect guess. You have 5 attempts remaining."
	if res.Message != want {
		t.Fatalf("message: got %q, want %q", res.Message, want)
	}
}

func TestEngine_SubmitGuessNotActive(t *testing.T) {
	e := newTestEngine(t)
	s := NewSession()

	res := e.SubmitGuess(s, "Alpha")
	if res.Kind != KindNotActive || res.Correct || res.Message != "Game is not in active state" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if s.Phase() != PhaseWaiting || s.Attempts() != 0 {
		t.Fatalf("waiting session mutated")
	}

	s = startedSession(t, e, alpha)
	e.SubmitGuess(s, "alpha")
	if res := e.SubmitGuess(s, "alpha"); res.Kind != KindNotActive {
		t.Fatalf("guess after win: %+v", res)
	}
}

func TestEngine_Reset(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *Engine, s *Session)
	}{
		{name: "from waiting", setup: func(e *Engine, s *Session) {}},
		{name: "from playing", setup: func(e *Engine, s *Session) {
			_ = e.Start(s, []domain.Track{alpha})
			e.SubmitGuess(s, "nope")
		}},
		{name: "from won", setup: func(e *Engine, s *Session) {
			_ = e.Start(s, []domain.Track{alpha})
			e.SubmitGuess(s, "alpha")
		}},
		{name: "from lost", setup: func(e *Engine, s *Session) {
			_ = e.Start(s, []domain.Track{alpha})
			for i := 0; i < 6; i++ {
				e.SubmitGuess(s, "nope")
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			s := NewSession()
			tt.setup(e, s)

			e.Reset(s)
			if s.song != nil || s.Attempts() != 0 || s.Phase() != PhaseWaiting {
				t.Fatalf("reset left state behind: %+v", s)
			}
		})
	}
}

func TestEngine_StateHidesAnswerWhilePlaying(t *testing.T) {
	e := newTestEngine(t, WithRand(fixedRand(0)))

	waiting := e.State(NewSession())
	if waiting.Song != nil || waiting.Phase != PhaseWaiting || waiting.RemainingAttempts != 6 {
		t.Fatalf("waiting snapshot: %+v", waiting)
	}

	s := startedSession(t, e, alpha)
	e.SubmitGuess(s, "nope")

	playing := e.State(s)
	if playing.Phase != PhasePlaying || playing.Attempts != 1 || playing.RemainingAttempts != 5 {
		t.Fatalf("playing snapshot: %+v", playing)
	}
	if playing.SnippetLength != 5*time.Second {
		t.Fatalf("snippet: got %v, want 5s", playing.SnippetLength)
	}
	if playing.Song == nil || playing.Song.PreviewURL != alpha.PreviewURL {
		t.Fatalf("preview url missing: %+v", playing.Song)
	}
	if playing.Song.Track != nil {
		t.Fatalf("answer exposed while playing: %+v", playing.Song.Track)
	}

	e.SubmitGuess(s, "alpha")
	won := e.State(s)
	if won.Phase != PhaseWon || won.Song == nil || won.Song.Track == nil || won.Song.Track.Name != "Alpha" {
		t.Fatalf("won snapshot should expose song: %+v", won.Song)
	}
}

func TestEngine_FewerAttemptsThanLengths(t *testing.T) {
	e := newTestEngine(t, WithMaxAttempts(2))
	s := startedSession(t, e, alpha)

	if res := e.SubmitGuess(s, "x"); res.Kind != KindIncorrect || res.RemainingAttempts != 1 {
		t.Fatalf("first guess: %+v", res)
	}
	if res := e.SubmitGuess(s, "x"); res.Kind != KindLost {
		t.Fatalf("second guess: %+v", res)
	}
}
