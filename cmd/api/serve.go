package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/ewilliams-labs/songle/internal/adapters/memory"
	"github.com/ewilliams-labs/songle/internal/adapters/rest"
	"github.com/ewilliams-labs/songle/internal/adapters/spotify"
	"github.com/ewilliams-labs/songle/internal/adapters/sqlite"
	"github.com/ewilliams-labs/songle/internal/config"
	"github.com/ewilliams-labs/songle/internal/core/game"
	"github.com/ewilliams-labs/songle/internal/core/ports"
	"github.com/ewilliams-labs/songle/internal/core/services"
	"github.com/ewilliams-labs/songle/internal/worker"
)

// deps holds everything built from the configuration.
type deps struct {
	svc     *services.Orchestrator
	handler http.Handler
	pool    *worker.Pool
	closers []func() error
}

func (d *deps) Close() {
	if d.pool != nil {
		d.pool.Stop()
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warn("close failed", "err", err)
		}
	}
}

// wire builds the adapters, the engine and the orchestrator from cfg.
func wire(ctx context.Context, cfg *config.Config) (*deps, error) {
	if !cfg.Spotify.Configured() {
		return nil, errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required")
	}
	d := &deps{}

	// -- Playlist cache
	var repo ports.PlaylistRepository
	var restOpts []rest.Option
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		dbAdapter, err := sqlite.NewAdapter(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repo = dbAdapter
		d.closers = append(d.closers, dbAdapter.Close)
		restOpts = append(restOpts, rest.WithReadiness(dbAdapter))
	case config.DriverNone:
		log.Info("playlist cache disabled")
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	// -- Spotify adapter
	spotifyClient, err := spotify.NewClient(ctx, spotify.Config{
		ClientID:          cfg.Spotify.ClientID,
		ClientSecret:      cfg.Spotify.ClientSecret,
		BaseURL:           cfg.Spotify.BaseURL,
		TokenURL:          cfg.Spotify.TokenURL,
		Market:            cfg.Spotify.Market,
		MaxRetries:        cfg.Spotify.MaxRetries,
		RetryBackoff:      time.Duration(cfg.Spotify.RetryBackoffMs) * time.Millisecond,
		RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
		Timeout:           cfg.Spotify.Timeout,
	})
	if err != nil {
		d.Close()
		return nil, err
	}

	// -- Game rules
	engine, err := game.New(
		game.WithMaxAttempts(cfg.Game.MaxAttempts),
		game.WithSnippetLengths(cfg.Game.SnippetLengths()),
	)
	if err != nil {
		d.Close()
		return nil, err
	}

	opts := []services.Option{services.WithCacheTTL(cfg.Storage.CacheTTL)}
	// Measurements are stored through the cache, so the measurer needs one.
	if cfg.Worker.Enabled && repo != nil {
		d.pool = worker.NewPool(repo, cfg.Worker.Workers, cfg.Worker.QueueSize)
		d.pool.Start(ctx)
		opts = append(opts, services.WithPreviewQueue(d.pool))
	}

	d.svc = services.NewOrchestrator(spotifyClient, repo, memory.NewStore(), engine, opts...)

	if dir := cfg.Server.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			restOpts = append(restOpts, rest.WithStaticDir(dir))
		} else {
			log.Warn("static dir not found, not serving the client", "dir", dir)
		}
	}
	d.handler = rest.LogRequests(rest.NewHandler(d.svc, restOpts...))
	return d, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := wire(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	go pruneIdleGames(ctx, d.svc, cfg.Sessions)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           d.handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("songle API is running", "addr", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("server stopped")
		return nil
	}
}

// pruneIdleGames drops abandoned games until ctx ends.
func pruneIdleGames(ctx context.Context, svc *services.Orchestrator, cfg config.SessionsConfig) {
	if cfg.IdleTimeout <= 0 || cfg.PruneInterval <= 0 {
		return
	}
	ticker := time.NewTicker(cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.PruneIdle(ctx, cfg.IdleTimeout); err != nil {
				log.Warn("prune idle games failed", "err", err)
			}
		}
	}
}
