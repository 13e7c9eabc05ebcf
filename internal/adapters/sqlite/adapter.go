// Package sqlite provides a SQLite-backed implementation of the playlist cache port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ewilliams-labs/songle/internal/core/domain"
	"github.com/ewilliams-labs/songle/internal/core/ports"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// Adapter implements the repository port for SQLite
type Adapter struct {
	db *sql.DB
}

// compile-time interface assertion
var _ ports.PlaylistRepository = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// Each :memory: connection is its own database.
	if storagePath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Ping reports whether the database is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *Adapter) GetByID(ctx context.Context, id string) (domain.Playlist, error) {
	row := a.db.QueryRowContext(ctx, "SELECT id, name, fetched_at FROM playlists WHERE id = ?", id)
	var playlist domain.Playlist
	var fetchedAt int64
	if err := row.Scan(&playlist.ID, &playlist.Name, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Playlist{}, domain.ErrNotFound
		}
		return domain.Playlist{}, fmt.Errorf("failed to load playlist: %w", err)
	}
	if fetchedAt > 0 {
		playlist.FetchedAt = time.Unix(fetchedAt, 0).UTC()
	}
	playlist.Tracks = []domain.Track{}

	trackRows, err := a.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.artist, t.album, t.duration_ms, t.preview_url, IFNULL(t.preview_seconds, 0)
		FROM tracks t
		JOIN playlist_tracks pt ON pt.track_id = t.id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position ASC
	`, playlist.ID)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("failed to load playlist tracks: %w", err)
	}
	defer trackRows.Close()

	for trackRows.Next() {
		var track domain.Track
		var album sql.NullString
		var previewURL sql.NullString
		var duration sql.NullInt64
		if err := trackRows.Scan(
			&track.ID,
			&track.Name,
			&track.Artist,
			&album,
			&duration,
			&previewURL,
			&track.PreviewSeconds,
		); err != nil {
			return domain.Playlist{}, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		track.Album = album.String
		track.PreviewURL = previewURL.String
		if duration.Valid {
			track.DurationMs = int(duration.Int64)
		}
		playlist.Tracks = append(playlist.Tracks, track)
	}
	if err := trackRows.Err(); err != nil {
		return domain.Playlist{}, fmt.Errorf("failed to iterate playlist tracks: %w", err)
	}

	return playlist, nil
}

// UpdatePreviewSeconds records the measured preview length for a track.
func (a *Adapter) UpdatePreviewSeconds(ctx context.Context, trackID string, seconds float64) error {
	res, err := a.db.ExecContext(ctx, "UPDATE tracks SET preview_seconds = ? WHERE id = ?", seconds, trackID)
	if err != nil {
		return fmt.Errorf("failed to update preview length: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (a *Adapter) Save(ctx context.Context, p domain.Playlist) error {
	// 1. Start Transaction
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	// 2. Upsert Playlist
	var fetchedAt int64
	if !p.FetchedAt.IsZero() {
		fetchedAt = p.FetchedAt.Unix()
	}
	queryPlaylist := `
		INSERT INTO playlists (id, name, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, fetched_at=excluded.fetched_at;
	`
	if _, err := tx.ExecContext(ctx, queryPlaylist, p.ID, p.Name, fetchedAt); err != nil {
		return fmt.Errorf("failed to save playlist metadata: %w", err)
	}

	// 3. Reset Links (tracks themselves are shared across playlists and kept)
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear old tracks: %w", err)
	}

	// 4. Upsert Tracks & Re-link. A measured preview length survives a refetch
	// as long as the preview URL is unchanged.
	stmtTrack, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (id, name, artist, album, duration_ms, preview_url, preview_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			artist=excluded.artist,
			album=excluded.album,
			duration_ms=excluded.duration_ms,
			preview_seconds=CASE
				WHEN excluded.preview_seconds > 0 THEN excluded.preview_seconds
				WHEN tracks.preview_url IS excluded.preview_url THEN tracks.preview_seconds
				ELSE 0
			END,
			preview_url=excluded.preview_url;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track upsert: %w", err)
	}
	defer stmtTrack.Close()

	stmtLink, err := tx.PrepareContext(ctx, `
		INSERT INTO playlist_tracks (playlist_id, track_id, position)
		VALUES (?, ?, ?)
		ON CONFLICT(playlist_id, track_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track link: %w", err)
	}
	defer stmtLink.Close()

	for i, t := range p.Tracks {
		if t.ID == "" {
			continue
		}
		if _, err := stmtTrack.ExecContext(
			ctx,
			t.ID,
			t.Name,
			t.Artist,
			t.Album,
			t.DurationMs,
			t.PreviewURL,
			t.PreviewSeconds,
		); err != nil {
			return fmt.Errorf("failed to save track %s: %w", t.ID, err)
		}
		if _, err := stmtLink.ExecContext(ctx, p.ID, t.ID, i); err != nil {
			return fmt.Errorf("failed to link track %s: %w", t.ID, err)
		}
	}

	// 5. Commit Transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT,
		duration_ms INTEGER,
		preview_url TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS playlist_tracks (
		playlist_id TEXT,
		track_id TEXT,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (playlist_id, track_id),
		FOREIGN KEY(playlist_id) REFERENCES playlists(id) ON DELETE CASCADE,
		FOREIGN KEY(track_id) REFERENCES tracks(id) ON DELETE CASCADE
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// Columns added after the first release.
	for _, stmt := range []string{
		"ALTER TABLE tracks ADD COLUMN preview_seconds REAL",
		"ALTER TABLE playlists ADD COLUMN fetched_at INTEGER NOT NULL DEFAULT 0",
	} {
		if _, err := a.db.Exec(stmt); err != nil && !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
