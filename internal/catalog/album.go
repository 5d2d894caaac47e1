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

// Album groups tracks released together.
type Album struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Year     int           `json:"year"`
	Metadata MediaMetadata `json:"metadata"`
}

type CreateOrUpdateAlbumParams struct {
	Title    string
	Year     int
	Metadata MediaMetadata
}

// AlbumRepo is the Album entity's repository.
type AlbumRepo struct {
	db  *sql.DB
	bus *bus.Bus
}

// CreateOrUpdate upserts an Album keyed by (title, year).
func (r *AlbumRepo) CreateOrUpdate(ctx context.Context, p CreateOrUpdateAlbumParams) (Album, error) {
	existing, err := r.findByTitleYear(ctx, p.Title, p.Year)
	metaJSON, mErr := json.Marshal(p.Metadata)
	if mErr != nil {
		return Album{}, mErr
	}

	if err == nil {
		if metadataEqual(existing.Metadata, p.Metadata) {
			return existing, nil
		}
		if _, err := r.db.ExecContext(ctx, `UPDATE albums SET metadata = ? WHERE id = ?`, string(metaJSON), existing.ID); err != nil {
			return Album{}, err
		}
		r.bus.Dispatch(bus.Updated{Entity: bus.EntityAlbum, ID: existing.ID})
		existing.Metadata = p.Metadata
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) && !apperr.IsNotFound(err) {
		return Album{}, err
	}

	id := ids.New()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO albums (id, title, year, metadata) VALUES (?,?,?,?)`,
		id, p.Title, p.Year, string(metaJSON),
	); err != nil {
		return Album{}, err
	}
	r.bus.Dispatch(bus.Added{Entity: bus.EntityAlbum, ID: id})
	return Album{ID: id, Title: p.Title, Year: p.Year, Metadata: p.Metadata}, nil
}

func (r *AlbumRepo) findByTitleYear(ctx context.Context, title string, year int) (Album, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, title, year, metadata FROM albums WHERE title = ? AND year = ?`, title, year)
	return scanAlbum(row)
}

// FindByID looks up an Album by external ID.
func (r *AlbumRepo) FindByID(ctx context.Context, id string) (Album, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, title, year, metadata FROM albums WHERE id = ?`, id)
	a, err := scanAlbum(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Album{}, apperr.NotFound("album not found")
	}
	return a, err
}

// Update changes an album's title, year, or metadata directly; used by
// the admin PUT /albums/{id} endpoint.
func (r *AlbumRepo) Update(ctx context.Context, id, title string, year int, metadata MediaMetadata) (Album, error) {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return Album{}, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE albums SET title = ?, year = ?, metadata = ? WHERE id = ?`, title, year, string(metaJSON), id)
	if err != nil {
		return Album{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Album{}, apperr.NotFound("album not found")
	}
	r.bus.Dispatch(bus.Updated{Entity: bus.EntityAlbum, ID: id})
	return Album{ID: id, Title: title, Year: year, Metadata: metadata}, nil
}

// Delete removes an Album by ID.
func (r *AlbumRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM albums WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("album not found")
	}
	r.bus.Dispatch(bus.Deleted{Entity: bus.EntityAlbum, ID: id})
	return nil
}

// LinkTrack associates a track with an album, insert-or-ignore on the pair.
func (r *AlbumRepo) LinkTrack(ctx context.Context, albumID, trackID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO album_tracks (album_id, track_id) VALUES (?,?)`, albumID, trackID)
	return err
}

// LinkArtist associates an artist with an album, insert-or-ignore on the pair.
func (r *AlbumRepo) LinkArtist(ctx context.Context, albumID, artistID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO album_artists (album_id, artist_id) VALUES (?,?)`, albumID, artistID)
	return err
}

// List returns a cursor-paginated album listing ordered by id.
func (r *AlbumRepo) List(ctx context.Context, cur Cursor) ([]Album, error) {
	query, args := keysetQuery("albums", "id, title, year, metadata", cur)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Album
	for rows.Next() {
		var a Album
		var metaJSON string
		if err := rows.Scan(&a.ID, &a.Title, &a.Year, &metaJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(metaJSON), &a.Metadata)
		out = append(out, a)
	}
	if cur.Direction == Previous {
		reverse(out)
	}
	return out, rows.Err()
}

func scanAlbum(row *sql.Row) (Album, error) {
	var a Album
	var metaJSON string
	if err := row.Scan(&a.ID, &a.Title, &a.Year, &metaJSON); err != nil {
		return Album{}, err
	}
	_ = json.Unmarshal([]byte(metaJSON), &a.Metadata)
	return a, nil
}
