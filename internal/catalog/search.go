package catalog

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// SearchHit is a denormalized pointer into the catalog returned by Search.
type SearchHit struct {
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id"`
	Title      string `json:"title"`
}

// SearchRepo is the search index's read/write surface. Writes are
// driven exclusively by event handlers (see internal/search) that react
// to catalog mutations; this repository only knows how to apply those
// writes and answer Search queries.
type SearchRepo struct {
	db *sql.DB
}

// IndexEntity (re)indexes one entity: inserts each keyword into
// search_terms, upserts the denormalized search_hits row, and links every
// keyword to the hit via search_pivot. Stale pivot rows from a prior set
// of keywords for the same hit are left in place (harmless aliases).
func (s *SearchRepo) IndexEntity(ctx context.Context, kind, entityID, title string, keywords []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var hitID int64
	row := tx.QueryRowContext(ctx, `SELECT internal_id FROM search_hits WHERE entity_kind = ? AND entity_id = ?`, kind, entityID)
	if err := row.Scan(&hitID); err != nil {
		if err != sql.ErrNoRows {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO search_hits (entity_kind, entity_id, title) VALUES (?,?,?)`, kind, entityID, title)
		if err != nil {
			return err
		}
		hitID, _ = res.LastInsertId()
	} else {
		if _, err := tx.ExecContext(ctx, `UPDATE search_hits SET title = ? WHERE internal_id = ?`, title, hitID); err != nil {
			return err
		}
	}

	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO search_terms (term) VALUES (?)`, kw); err != nil {
			return err
		}
		var termID int64
		if err := tx.QueryRowContext(ctx, `SELECT internal_id FROM search_terms WHERE term = ?`, kw).Scan(&termID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO search_pivot (term_id, hit_id) VALUES (?,?)`, termID, hitID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RemoveEntity deletes the search_hits row for an entity. Orphaned pivot
// rows and terms are tolerated.
func (s *SearchRepo) RemoveEntity(ctx context.Context, kind, entityID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM search_hits WHERE entity_kind = ? AND entity_id = ?`, kind, entityID)
	return err
}

// ReindexRename deletes an entity's existing search rows and lets the
// caller reinsert fresh ones via IndexEntity, bounding the staleness a
// rename can introduce to the interval between the two calls.
func (s *SearchRepo) ReindexRename(ctx context.Context, kind, entityID string) error {
	return s.RemoveEntity(ctx, kind, entityID)
}

// Search returns at most 20 hits whose indexed keywords start with
// keyword, ordered by pivot insertion order.
func (s *SearchRepo) Search(ctx context.Context, keyword string) ([]SearchHit, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	query, args, err := builder.
		Select("h.entity_kind, h.entity_id, h.title", "MIN(p.internal_id) AS pivot_id").
		From("search_pivot p").
		Join("search_hits h ON h.internal_id = p.hit_id").
		Join("search_terms t ON t.internal_id = p.term_id").
		Where(sq.Like{"t.term": keyword + "%"}).
		GroupBy("h.internal_id").
		OrderBy("pivot_id ASC").
		Limit(20).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SearchHit
	for rows.Next() {
		var h SearchHit
		var pivotID int64
		if err := rows.Scan(&h.EntityKind, &h.EntityID, &h.Title, &pivotID); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
