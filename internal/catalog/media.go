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

// MediaType classifies a Media row.
type MediaType string

const (
	MediaAudio   MediaType = "audio"
	MediaVideo   MediaType = "video"
	MediaPhoto   MediaType = "photo"
	MediaUnknown MediaType = "unknown"
)

// MediaMetadata is the normalized tag record every tag source (ID3, FLAC,
// MP4, ...) is collapsed into at the scanner boundary.
type MediaMetadata struct {
	Title    string            `json:"title,omitempty"`
	Artist   string            `json:"artist,omitempty"`
	Album    string            `json:"album,omitempty"`
	Genre    string            `json:"genre,omitempty"`
	Year     int               `json:"year,omitempty"`
	Track    int               `json:"track,omitempty"`
	Disk     int               `json:"disk,omitempty"`
	Pictures map[string]string `json:"pictures,omitempty"` // pict_type_name -> media id
	Extra    map[string]string `json:"extra,omitempty"`    // normalized raw tag keys not otherwise modeled
}

// Media is a filesystem artifact: an audio file, a video file, or an
// extracted picture.
type Media struct {
	ID        string        `json:"id"`
	Filename  string        `json:"filename"`
	Path      string        `json:"path"`
	MediaType MediaType     `json:"media_type"`
	Metadata  MediaMetadata `json:"metadata"`
}

type CreateOrUpdateMediaParams struct {
	Filename  string
	Path      string
	MediaType MediaType
	Metadata  MediaMetadata
}

// MediaRepo is the Media entity's repository.
type MediaRepo struct {
	db  *sql.DB
	bus *bus.Bus
}

// CreateOrUpdate upserts a Media row keyed by (filename, path). This is
// what makes rescans idempotent: an unchanged file produces no write and
// no event.
func (r *MediaRepo) CreateOrUpdate(ctx context.Context, p CreateOrUpdateMediaParams) (Media, error) {
	existing, err := r.findByFilenamePath(ctx, p.Filename, p.Path)
	metaJSON, mErr := json.Marshal(p.Metadata)
	if mErr != nil {
		return Media{}, mErr
	}

	if err == nil {
		if existing.MediaType == p.MediaType && metadataEqual(existing.Metadata, p.Metadata) {
			return existing, nil // no-op: unchanged row, no event
		}
		if _, err := r.db.ExecContext(ctx,
			`UPDATE media SET media_type = ?, metadata = ? WHERE id = ?`,
			string(p.MediaType), string(metaJSON), existing.ID,
		); err != nil {
			return Media{}, err
		}
		r.bus.Dispatch(bus.Updated{Entity: bus.EntityMedia, ID: existing.ID})
		existing.MediaType = p.MediaType
		existing.Metadata = p.Metadata
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) && !apperr.IsNotFound(err) {
		return Media{}, err
	}

	id := ids.New()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO media (id, filename, path, media_type, metadata) VALUES (?,?,?,?,?)`,
		id, p.Filename, p.Path, string(p.MediaType), string(metaJSON),
	); err != nil {
		return Media{}, err
	}
	r.bus.Dispatch(bus.Added{Entity: bus.EntityMedia, ID: id})
	return Media{ID: id, Filename: p.Filename, Path: p.Path, MediaType: p.MediaType, Metadata: p.Metadata}, nil
}

func (r *MediaRepo) findByFilenamePath(ctx context.Context, filename, path string) (Media, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, filename, path, media_type, metadata FROM media WHERE filename = ? AND path = ?`,
		filename, path)
	return scanMedia(row)
}

// FindByID looks up a Media row by external ID.
func (r *MediaRepo) FindByID(ctx context.Context, id string) (Media, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, filename, path, media_type, metadata FROM media WHERE id = ?`, id)
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Media{}, apperr.NotFound("media not found")
	}
	return m, err
}

func scanMedia(row *sql.Row) (Media, error) {
	var m Media
	var mediaType, metaJSON string
	if err := row.Scan(&m.ID, &m.Filename, &m.Path, &mediaType, &metaJSON); err != nil {
		return Media{}, err
	}
	m.MediaType = MediaType(mediaType)
	_ = json.Unmarshal([]byte(metaJSON), &m.Metadata)
	return m, nil
}

func metadataEqual(a, b MediaMetadata) bool {
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	return string(aj) == string(bj)
}
