package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/arung-agamani/soundvault/internal/apperr"
	"github.com/arung-agamani/soundvault/internal/bus"
	"github.com/arung-agamani/soundvault/internal/ids"
)

// Track is a playable item backed by one Media row.
type Track struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	MediaID  string        `json:"media_id"`
	Metadata MediaMetadata `json:"metadata"`
}

type CreateOrUpdateTrackParams struct {
	Title    string
	MediaID  string
	Metadata MediaMetadata
}

// TrackRepo is the Track entity's repository.
type TrackRepo struct {
	db  *sql.DB
	bus *bus.Bus
}

// CreateOrUpdate upserts a Track keyed by (title, media_id).
func (r *TrackRepo) CreateOrUpdate(ctx context.Context, p CreateOrUpdateTrackParams) (Track, error) {
	existing, err := r.findByTitleMedia(ctx, p.Title, p.MediaID)
	metaJSON, mErr := json.Marshal(p.Metadata)
	if mErr != nil {
		return Track{}, mErr
	}

	if err == nil {
		if metadataEqual(existing.Metadata, p.Metadata) {
			return existing, nil
		}
		if _, err := r.db.ExecContext(ctx, `UPDATE tracks SET metadata = ? WHERE id = ?`, string(metaJSON), existing.ID); err != nil {
			return Track{}, err
		}
		r.bus.Dispatch(bus.Updated{Entity: bus.EntityTrack, ID: existing.ID})
		existing.Metadata = p.Metadata
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) && !apperr.IsNotFound(err) {
		return Track{}, err
	}

	id := ids.New()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO tracks (id, title, media_id, metadata) VALUES (?,?,?,?)`,
		id, p.Title, p.MediaID, string(metaJSON),
	); err != nil {
		return Track{}, err
	}
	r.bus.Dispatch(bus.Added{Entity: bus.EntityTrack, ID: id})
	return Track{ID: id, Title: p.Title, MediaID: p.MediaID, Metadata: p.Metadata}, nil
}

func (r *TrackRepo) findByTitleMedia(ctx context.Context, title, mediaID string) (Track, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, title, media_id, metadata FROM tracks WHERE title = ? AND media_id = ?`, title, mediaID)
	return scanTrack(row)
}

// FindByID looks up a Track by external ID.
func (r *TrackRepo) FindByID(ctx context.Context, id string) (Track, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, title, media_id, metadata FROM tracks WHERE id = ?`, id)
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Track{}, apperr.NotFound("track not found")
	}
	return t, err
}

// Update changes a track's title or metadata directly (not via scanner
// upsert); used by the admin PUT /tracks/{id} endpoint.
func (r *TrackRepo) Update(ctx context.Context, id, title string, metadata MediaMetadata) (Track, error) {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return Track{}, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE tracks SET title = ?, metadata = ? WHERE id = ?`, title, string(metaJSON), id)
	if err != nil {
		return Track{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Track{}, apperr.NotFound("track not found")
	}
	r.bus.Dispatch(bus.Updated{Entity: bus.EntityTrack, ID: id})
	return Track{ID: id, Title: title, Metadata: metadata}, nil
}

// Delete removes a Track by ID.
func (r *TrackRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("track not found")
	}
	r.bus.Dispatch(bus.Deleted{Entity: bus.EntityTrack, ID: id})
	return nil
}

// List returns a cursor-paginated track listing ordered by id.
func (r *TrackRepo) List(ctx context.Context, cur Cursor) ([]Track, error) {
	query, args := keysetQuery("tracks", "id, title, media_id, metadata", cur)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := scanTracks(rows)
	if err != nil {
		return nil, err
	}
	if cur.Direction == Previous {
		reverse(out)
	}
	return out, nil
}

// ByAlbum returns every track linked to the given album, ordered by id.
func (r *TrackRepo) ByAlbum(ctx context.Context, albumID string) ([]Track, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.media_id, t.metadata
		FROM tracks t
		JOIN album_tracks at ON at.track_id = t.id
		WHERE at.album_id = ?
		ORDER BY t.id ASC`, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTracks(rows)
}

// ByArtist returns every track linked to the given artist, ordered by id.
func (r *TrackRepo) ByArtist(ctx context.Context, artistID string) ([]Track, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.media_id, t.metadata
		FROM tracks t
		JOIN artist_tracks art ON art.track_id = t.id
		WHERE art.artist_id = ?
		ORDER BY t.id ASC`, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTracks(rows)
}

// ByPlaylist returns every track linked to the given playlist, in
// playlist order (ascending internal_id of the link row).
func (r *TrackRepo) ByPlaylist(ctx context.Context, playlistID string) ([]Track, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.media_id, t.metadata
		FROM tracks t
		JOIN playlist_tracks pt ON pt.track_id = t.id
		WHERE pt.playlist_id = ?
		ORDER BY pt.internal_id ASC`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTracks(rows)
}

func scanTrack(row *sql.Row) (Track, error) {
	var t Track
	var metaJSON string
	if err := row.Scan(&t.ID, &t.Title, &t.MediaID, &metaJSON); err != nil {
		return Track{}, err
	}
	_ = json.Unmarshal([]byte(metaJSON), &t.Metadata)
	return t, nil
}

func scanTracks(rows *sql.Rows) ([]Track, error) {
	var out []Track
	for rows.Next() {
		var t Track
		var metaJSON string
		if err := rows.Scan(&t.ID, &t.Title, &t.MediaID, &metaJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(metaJSON), &t.Metadata)
		out = append(out, t)
	}
	return out, rows.Err()
}
