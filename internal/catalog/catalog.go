// Package catalog is the relational store: entities, repositories,
// cursor pagination, and idempotent upserts, all sitting on a shared
// *sql.DB pool and emitting domain events through the bus.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arung-agamani/soundvault/internal/bus"
)

// Store owns the connection pool and every entity repository. All writes
// go through its repositories; there is no ORM layer, just single
// statements or short transactions.
type Store struct {
	db  *sql.DB
	bus *bus.Bus

	Clients   *ClientRepo
	Media     *MediaRepo
	Tracks    *TrackRepo
	Albums    *AlbumRepo
	Artists   *ArtistRepo
	Playlists *PlaylistRepo
	Search    *SearchRepo
}

// Open creates the sqlite-backed pool (max 5 connections, 30s busy
// timeout, WAL journal mode, foreign keys on) and runs schema
// bootstrap. bootstrapPath
// is where the one-time admin/guest credentials are written on first
// boot; pass "" to skip writing the file (e.g. in tests).
func Open(ctx context.Context, path string, b *bus.Bus, bootstrapPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, bus: b}
	s.Clients = &ClientRepo{db: db, bus: b}
	s.Media = &MediaRepo{db: db, bus: b}
	s.Tracks = &TrackRepo{db: db, bus: b}
	s.Albums = &AlbumRepo{db: db, bus: b}
	s.Artists = &ArtistRepo{db: db, bus: b}
	s.Playlists = &PlaylistRepo{db: db, bus: b}
	s.Search = &SearchRepo{db: db}

	if err := s.bootstrap(ctx, bootstrapPath); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying pool for components that need to read
// outside the repository layer (e.g. the search index's own tables).
func (s *Store) DB() *sql.DB { return s.db }

// bootstrap creates every table (idempotent CREATE TABLE IF NOT EXISTS,
// in dependency order) and seeds a default admin, default user, and
// default playlist on first boot.
func (s *Store) bootstrap(ctx context.Context, bootstrapPath string) error {
	stmts := []string{
		schemaClients,
		schemaMedia,
		schemaTracks,
		schemaAlbums,
		schemaArtists,
		schemaArtistTracks,
		schemaAlbumTracks,
		schemaAlbumArtists,
		schemaPlaylists,
		schemaPlaylistTracks,
		schemaSearchTerms,
		schemaSearchHits,
		schemaSearchPivot,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema bootstrap: %w", err)
		}
	}

	admins, err := s.Clients.CountByRole(ctx, RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}

	admin, err := s.Clients.Create(ctx, NewClientParams{Name: "admin", Role: RoleAdmin})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	user, err := s.Clients.Create(ctx, NewClientParams{Name: "guest", Role: RoleUser})
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	playlist, err := s.Playlists.Create(ctx, CreatePlaylistParams{Name: "Default", IsDefault: true})
	if err != nil {
		return fmt.Errorf("seed default playlist: %w", err)
	}

	slog.Info("bootstrapped default catalog state",
		"admin_id", admin.ID, "guest_id", user.ID, "default_playlist_id", playlist.ID,
	)

	if bootstrapPath != "" {
		if err := WriteBootstrapRecord(bootstrapPath, admin, user, playlist.ID); err != nil {
			slog.Warn("failed to write bootstrap record", "error", err)
		}
		if err := RewriteEnvPlaceholders(".env", admin, user, playlist.ID); err != nil {
			slog.Warn("failed to rewrite env placeholders", "error", err)
		}
	}
	return nil
}

// RewriteEnvPlaceholders substitutes the named {{...}} placeholders in an
// environment file with the identifiers minted at first boot, so a
// deployment's .env template becomes usable credentials without copying
// them out of the logs. A missing file is not an error.
func RewriteEnvPlaceholders(path string, admin, guest ClientWithToken, playlistID string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	content := string(raw)
	for placeholder, value := range map[string]string{
		"{{admin_id}}":         admin.ID,
		"{{admin_token}}":      admin.PlainToken,
		"{{client_id}}":        guest.ID,
		"{{client_token}}":     guest.PlainToken,
		"{{default_playlist}}": playlistID,
	} {
		content = strings.ReplaceAll(content, placeholder, value)
	}
	if content == string(raw) {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

// WriteBootstrapRecord persists the one-time bootstrap identifiers to
// disk so a restart doesn't require re-reading startup logs for them.
func WriteBootstrapRecord(path string, admin, guest ClientWithToken, playlistID string) error {
	content := fmt.Sprintf(
		"admin_id=%s\nadmin_token=%s\nguest_id=%s\nguest_token=%s\ndefault_playlist_id=%s\n",
		admin.ID, admin.PlainToken, guest.ID, guest.PlainToken, playlistID,
	)
	return os.WriteFile(path, []byte(content), 0o600)
}
