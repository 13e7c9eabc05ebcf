package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ewilliams-labs/songle/internal/config"
	"github.com/ewilliams-labs/songle/internal/core/domain"
)

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songle.toml")

	app := newApp()
	if err := app.Run(context.Background(), []string{"songle", "--config", path, "config", "init"}); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	app = newApp()
	if err := app.Run(context.Background(), []string{"songle", "--config", path, "config", "init"}); err == nil {
		t.Fatal("second init should refuse to overwrite")
	}
}

func TestWire_RequiresCredentials(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := wire(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "SPOTIFY_CLIENT_ID") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestWire_WithoutCache(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Spotify.ClientID = "id"
	cfg.Spotify.ClientSecret = "secret"
	cfg.Storage.Driver = config.DriverNone
	cfg.Server.StaticDir = ""

	d, err := wire(context.Background(), cfg)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	defer d.Close()
	if d.pool != nil {
		t.Fatal("measurement pool needs a cache to write to")
	}
	if d.svc == nil || d.handler == nil {
		t.Fatal("service and handler must be built")
	}
}

func TestPrintPlaylist(t *testing.T) {
	p := domain.Playlist{ID: "pl1", Name: "Letters", Tracks: []domain.Track{
		{ID: "t1", Name: "Alpha", Artist: "The Letters", PreviewURL: "u", DurationMs: 200000, PreviewSeconds: 29.6},
		{ID: "t2", Name: "Beta", Artist: "The Letters", DurationMs: 180000},
	}}

	var buf bytes.Buffer
	if err := printPlaylist(&buf, p, false); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2 tracks, 1 with previews") || !strings.Contains(out, "29.6s") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Beta") {
		t.Fatalf("unplayable track listed without --all:\n%s", out)
	}

	buf.Reset()
	if err := printPlaylist(&buf, p, true); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), "Beta") {
		t.Fatalf("--all should list every track:\n%s", buf.String())
	}
}
