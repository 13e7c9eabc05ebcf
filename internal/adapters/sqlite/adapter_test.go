package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ewilliams-labs/songle/internal/core/domain"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAdapter_GetByID(t *testing.T) {
	fetched := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setup      func(t *testing.T, a *Adapter) string
		wantErr    error
		wantName   string
		wantOrder  []string
		wantFetch  time.Time
		wantAlbum  string
		wantLength int
	}{
		{
			name: "not found",
			setup: func(t *testing.T, a *Adapter) string {
				return "missing"
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "returns playlist with tracks in order",
			setup: func(t *testing.T, a *Adapter) string {
				p := domain.Playlist{
					ID:        "pl-1",
					Name:      "Test Playlist",
					FetchedAt: fetched,
					Tracks: []domain.Track{
						{ID: "t2", Name: "Song Two", Artist: "Artist B", PreviewURL: "https://p.test/2.mp3"},
						{ID: "t1", Name: "Song One", Artist: "Artist A", Album: "Album A", DurationMs: 123000},
						{ID: "t3", Name: "Song Three", Artist: "Artist C", PreviewURL: "https://p.test/3.mp3"},
					},
				}
				if err := a.Save(context.Background(), p); err != nil {
					t.Fatalf("save playlist: %v", err)
				}
				return p.ID
			},
			wantName:   "Test Playlist",
			wantOrder:  []string{"t2", "t1", "t3"},
			wantFetch:  fetched,
			wantAlbum:  "Album A",
			wantLength: 123000,
		},
		{
			name: "resave replaces track links",
			setup: func(t *testing.T, a *Adapter) string {
				ctx := context.Background()
				first := domain.Playlist{ID: "pl-2", Name: "Old", Tracks: []domain.Track{
					{ID: "t1", Name: "Song One", Artist: "Artist A", Album: "Album A", DurationMs: 123000},
					{ID: "t9", Name: "Gone", Artist: "Nobody"},
				}}
				second := domain.Playlist{ID: "pl-2", Name: "New", FetchedAt: fetched, Tracks: []domain.Track{
					{ID: "t1", Name: "Song One", Artist: "Artist A", Album: "Album A", DurationMs: 123000},
				}}
				if err := a.Save(ctx, first); err != nil {
					t.Fatalf("save first: %v", err)
				}
				if err := a.Save(ctx, second); err != nil {
					t.Fatalf("save second: %v", err)
				}
				return "pl-2"
			},
			wantName:   "New",
			wantOrder:  []string{"t1"},
			wantFetch:  fetched,
			wantAlbum:  "Album A",
			wantLength: 123000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t)

			playlistID := tt.setup(t, a)
			got, err := a.GetByID(context.Background(), playlistID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != playlistID {
				t.Fatalf("id: got %q, want %q", got.ID, playlistID)
			}
			if got.Name != tt.wantName {
				t.Fatalf("name: got %q, want %q", got.Name, tt.wantName)
			}
			if !got.FetchedAt.Equal(tt.wantFetch) {
				t.Fatalf("fetched_at: got %v, want %v", got.FetchedAt, tt.wantFetch)
			}
			if len(got.Tracks) != len(tt.wantOrder) {
				t.Fatalf("tracks: got %d, want %d", len(got.Tracks), len(tt.wantOrder))
			}
			for i, id := range tt.wantOrder {
				if got.Tracks[i].ID != id {
					t.Fatalf("track %d: got %q, want %q", i, got.Tracks[i].ID, id)
				}
			}
			for _, track := range got.Tracks {
				if track.ID != "t1" {
					continue
				}
				if track.Name == "" || track.Artist == "" {
					t.Fatalf("track fields not populated: %+v", track)
				}
				if track.Album != tt.wantAlbum || track.DurationMs != tt.wantLength {
					t.Fatalf("track details: %+v", track)
				}
			}
		})
	}
}

func TestAdapter_UpdatePreviewSeconds(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	p := domain.Playlist{ID: "pl-1", Name: "Previews", Tracks: []domain.Track{
		{ID: "t1", Name: "Song One", Artist: "Artist A", PreviewURL: "https://p.test/1.mp3"},
	}}
	if err := a.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := a.UpdatePreviewSeconds(ctx, "t1", 29.7); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := a.UpdatePreviewSeconds(ctx, "missing", 30); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, err := a.GetByID(ctx, "pl-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Tracks[0].PreviewSeconds != 29.7 {
		t.Fatalf("preview seconds: got %v", got.Tracks[0].PreviewSeconds)
	}

	// A refetch without a measurement keeps the stored one for the same URL.
	if err := a.Save(ctx, p); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, _ = a.GetByID(ctx, "pl-1")
	if got.Tracks[0].PreviewSeconds != 29.7 {
		t.Fatalf("measurement lost on resave: %v", got.Tracks[0].PreviewSeconds)
	}

	// A new preview URL invalidates it.
	p.Tracks[0].PreviewURL = "https://p.test/1b.mp3"
	if err := a.Save(ctx, p); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, _ = a.GetByID(ctx, "pl-1")
	if got.Tracks[0].PreviewSeconds != 0 {
		t.Fatalf("stale measurement kept: %v", got.Tracks[0].PreviewSeconds)
	}
}

func TestAdapter_MigrateIsIdempotent(t *testing.T) {
	a := newTestAdapter(t)
	if err := a.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if err := a.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
