package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/songle/internal/core/services"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc       *services.Orchestrator // Dependency on the Core Service
	router    *http.ServeMux         // Standard library router
	ready     Pinger
	staticDir string
}

// Option customizes a Handler.
type Option func(*Handler)

// WithReadiness makes GET /ready ping p.
func WithReadiness(p Pinger) Option {
	return func(h *Handler) { h.ready = p }
}

// WithStaticDir serves the browser client from dir at GET /.
func WithStaticDir(dir string) Option {
	return func(h *Handler) { h.staticDir = dir }
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Orchestrator, opts ...Option) *Handler {
	h := &Handler{
		svc:    svc,
		router: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	// Register Routes
	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health checks
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.HandleFunc("GET /ready", h.ReadyCheck)

	// Playlist proxy
	h.router.HandleFunc("GET /api/playlist/{id}", h.GetPlaylist)

	// Hosted games
	h.router.HandleFunc("POST /api/games", h.StartGame)
	h.router.HandleFunc("GET /api/games/{id}", h.GetGame)
	h.router.HandleFunc("POST /api/games/{id}/guesses", h.SubmitGuess)
	h.router.HandleFunc("POST /api/games/{id}/reset", h.ResetGame)
	h.router.HandleFunc("POST /api/games/{id}/restart", h.RestartGame)
	h.router.HandleFunc("DELETE /api/games/{id}", h.EndGame)

	if h.staticDir != "" {
		h.router.Handle("GET /", http.FileServer(http.Dir(h.staticDir)))
	}
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Songle is live"})
}

// ReadyCheck reports whether the playlist cache can be reached.
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready.Ping(ctx); err != nil {
			log.Warn("rest: readiness check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LogRequests logs one line per request.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		keyvals := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Microsecond),
		}
		if rec.status >= http.StatusInternalServerError {
			log.Warn("http request", keyvals...)
			return
		}
		log.Debug("http request", keyvals...)
	})
}
