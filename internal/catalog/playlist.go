package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arung-agamani/soundvault/internal/apperr"
	"github.com/arung-agamani/soundvault/internal/bus"
	"github.com/arung-agamani/soundvault/internal/ids"
)

// Playlist is a named, ordered collection of tracks.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsDefault   bool   `json:"is_default"`
	Description string `json:"description"`
}

type CreatePlaylistParams struct {
	Name        string
	IsDefault   bool
	Description string
}

// PlaylistRepo is the Playlist entity's repository.
type PlaylistRepo struct {
	db  *sql.DB
	bus *bus.Bus
}

// Create inserts a new playlist, clearing any existing default within
// the same transaction if IsDefault is set.
func (r *PlaylistRepo) Create(ctx context.Context, p CreatePlaylistParams) (Playlist, error) {
	id := ids.New()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Playlist{}, err
	}
	defer tx.Rollback()

	isDefault := 0
	if p.IsDefault {
		isDefault = 1
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO playlists (id, name, is_default, description) VALUES (?,?,?,?)`,
		id, p.Name, isDefault, p.Description,
	); err != nil {
		return Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}
	if p.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE playlists SET is_default = 0 WHERE is_default = 1 AND id <> ?`, id); err != nil {
			return Playlist{}, fmt.Errorf("clear previous default: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Playlist{}, err
	}

	r.bus.Dispatch(bus.Added{Entity: bus.EntityPlaylist, ID: id})
	if p.IsDefault {
		r.bus.Dispatch(bus.PlaylistDefaultChanged{PlaylistID: id})
	}
	return Playlist{ID: id, Name: p.Name, IsDefault: p.IsDefault, Description: p.Description}, nil
}

// SetDefault flips a playlist's is_default flag to true and clears it on
// every other playlist, inside one transaction: the core of the
// "at most one default playlist" invariant.
func (r *PlaylistRepo) SetDefault(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE playlists SET is_default = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("playlist not found")
	}
	if _, err := tx.ExecContext(ctx, `UPDATE playlists SET is_default = 0 WHERE is_default = 1 AND id <> ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	r.bus.Dispatch(bus.PlaylistDefaultChanged{PlaylistID: id})
	return nil
}

// Default returns the current default playlist, if one exists.
func (r *PlaylistRepo) Default(ctx context.Context) (Playlist, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, is_default, description FROM playlists WHERE is_default = 1`)
	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, apperr.NotFound("no default playlist set")
	}
	return p, err
}

// FindByID looks up a Playlist by external ID.
func (r *PlaylistRepo) FindByID(ctx context.Context, id string) (Playlist, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, is_default, description FROM playlists WHERE id = ?`, id)
	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, apperr.NotFound("playlist not found")
	}
	return p, err
}

// Update changes a playlist's name or description directly; used by the
// admin PUT /playlists/{id} endpoint. It never touches is_default; that
// flag is set only by Create (for a new default) and SetDefault.
func (r *PlaylistRepo) Update(ctx context.Context, id, name, description string) (Playlist, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE playlists SET name = ?, description = ? WHERE id = ?`, name, description, id)
	if err != nil {
		return Playlist{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Playlist{}, apperr.NotFound("playlist not found")
	}
	r.bus.Dispatch(bus.Updated{Entity: bus.EntityPlaylist, ID: id})
	return r.FindByID(ctx, id)
}

// Delete removes a playlist by ID.
func (r *PlaylistRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("playlist not found")
	}
	r.bus.Dispatch(bus.Deleted{Entity: bus.EntityPlaylist, ID: id})
	return nil
}

// List returns a cursor-paginated playlist listing ordered by id.
func (r *PlaylistRepo) List(ctx context.Context, cur Cursor) ([]Playlist, error) {
	query, args := keysetQuery("playlists", "id, name, is_default, description", cur)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Playlist
	for rows.Next() {
		p, err := scanPlaylistRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if cur.Direction == Previous {
		reverse(out)
	}
	return out, rows.Err()
}

// AddTrack links a track into a playlist, returning the new link row's
// ordinal (internal_id), which doubles as the order number.
func (r *PlaylistRepo) AddTrack(ctx context.Context, playlistID, trackID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO playlist_tracks (playlist_id, track_id) VALUES (?,?)`,
		playlistID, trackID,
	)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	var orderNumber int64
	if n == 0 {
		// Already linked: look up the existing ordinal rather than
		// erroring, matching the association-table insert-or-ignore
		// contract of "return the existing row."
		row := r.db.QueryRowContext(ctx,
			`SELECT internal_id FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`, playlistID, trackID)
		if err := row.Scan(&orderNumber); err != nil {
			return 0, err
		}
		return orderNumber, nil
	}
	orderNumber, _ = res.LastInsertId()
	r.bus.Dispatch(bus.PlaylistTrackAdded{PlaylistID: playlistID, TrackID: trackID, OrderNumber: orderNumber})
	return orderNumber, nil
}

// RemoveTrack unlinks a track from a playlist.
func (r *PlaylistRepo) RemoveTrack(ctx context.Context, playlistID, trackID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`, playlistID, trackID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("track not in playlist")
	}
	r.bus.Dispatch(bus.PlaylistTrackRemoved{PlaylistID: playlistID, TrackID: trackID})
	return nil
}

func scanPlaylist(row *sql.Row) (Playlist, error) {
	var p Playlist
	var isDefault int
	if err := row.Scan(&p.ID, &p.Name, &isDefault, &p.Description); err != nil {
		return Playlist{}, err
	}
	p.IsDefault = isDefault != 0
	return p, nil
}

func scanPlaylistRows(rows *sql.Rows) (Playlist, error) {
	var p Playlist
	var isDefault int
	if err := rows.Scan(&p.ID, &p.Name, &isDefault, &p.Description); err != nil {
		return Playlist{}, err
	}
	p.IsDefault = isDefault != 0
	return p, nil
}
