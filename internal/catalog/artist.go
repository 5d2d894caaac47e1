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

// Artist is a named contributor, unique by name.
type Artist struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Metadata MediaMetadata `json:"metadata"`
}

type CreateOrUpdateArtistParams struct {
	Name     string
	Metadata MediaMetadata
}

// ArtistRepo is the Artist entity's repository.
type ArtistRepo struct {
	db  *sql.DB
	bus *bus.Bus
}

// CreateOrUpdate upserts an Artist keyed by name.
func (r *ArtistRepo) CreateOrUpdate(ctx context.Context, p CreateOrUpdateArtistParams) (Artist, error) {
	existing, err := r.findByName(ctx, p.Name)
	metaJSON, mErr := json.Marshal(p.Metadata)
	if mErr != nil {
		return Artist{}, mErr
	}

	if err == nil {
		if metadataEqual(existing.Metadata, p.Metadata) {
			return existing, nil
		}
		if _, err := r.db.ExecContext(ctx, `UPDATE artists SET metadata = ? WHERE id = ?`, string(metaJSON), existing.ID); err != nil {
			return Artist{}, err
		}
		r.bus.Dispatch(bus.Updated{Entity: bus.EntityArtist, ID: existing.ID})
		existing.Metadata = p.Metadata
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) && !apperr.IsNotFound(err) {
		return Artist{}, err
	}

	id := ids.New()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO artists (id, name, metadata) VALUES (?,?,?)`,
		id, p.Name, string(metaJSON),
	); err != nil {
		return Artist{}, err
	}
	r.bus.Dispatch(bus.Added{Entity: bus.EntityArtist, ID: id})
	return Artist{ID: id, Name: p.Name, Metadata: p.Metadata}, nil
}

func (r *ArtistRepo) findByName(ctx context.Context, name string) (Artist, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, metadata FROM artists WHERE name = ?`, name)
	return scanArtist(row)
}

// FindByID looks up an Artist by external ID.
func (r *ArtistRepo) FindByID(ctx context.Context, id string) (Artist, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, metadata FROM artists WHERE id = ?`, id)
	a, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Artist{}, apperr.NotFound("artist not found")
	}
	return a, err
}

// Update changes an artist's name or metadata directly; used by the
// admin PUT /artists/{id} endpoint.
func (r *ArtistRepo) Update(ctx context.Context, id, name string, metadata MediaMetadata) (Artist, error) {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return Artist{}, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE artists SET name = ?, metadata = ? WHERE id = ?`, name, string(metaJSON), id)
	if err != nil {
		return Artist{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Artist{}, apperr.NotFound("artist not found")
	}
	r.bus.Dispatch(bus.Updated{Entity: bus.EntityArtist, ID: id})
	return Artist{ID: id, Name: name, Metadata: metadata}, nil
}

// LinkTrack associates an artist with a track and an is_feature flag,
// insert-or-ignore on the pair.
func (r *ArtistRepo) LinkTrack(ctx context.Context, artistID, trackID string, isFeature bool) error {
	feature := 0
	if isFeature {
		feature = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO artist_tracks (artist_id, track_id, is_feature) VALUES (?,?,?)`,
		artistID, trackID, feature,
	)
	return err
}

// List returns a cursor-paginated artist listing ordered by id.
func (r *ArtistRepo) List(ctx context.Context, cur Cursor) ([]Artist, error) {
	query, args := keysetQuery("artists", "id, name, metadata", cur)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Artist
	for rows.Next() {
		var a Artist
		var metaJSON string
		if err := rows.Scan(&a.ID, &a.Name, &metaJSON); err != nil {
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

func scanArtist(row *sql.Row) (Artist, error) {
	var a Artist
	var metaJSON string
	if err := row.Scan(&a.ID, &a.Name, &metaJSON); err != nil {
		return Artist{}, err
	}
	_ = json.Unmarshal([]byte(metaJSON), &a.Metadata)
	return a, nil
}
