// Package search wires the catalog's domain events into the search
// index: it never inspects event payloads beyond the ID they carry,
// re-reading current state from the catalog store on every handling
// invocation.
package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arung-agamani/soundvault/internal/bus"
	"github.com/arung-agamani/soundvault/internal/catalog"
)

// Register subscribes every search-index event handler against b. Call
// once at startup, alongside any other packages registering their own
// handlers.
func Register(ctx context.Context, b *bus.Bus, store *catalog.Store) {
	bus.Subscribe(b, "added", func(ev bus.Added) { reindex(ctx, store, ev.Entity, ev.ID) })
	bus.Subscribe(b, "updated", func(ev bus.Updated) { reindex(ctx, store, ev.Entity, ev.ID) })
	bus.Subscribe(b, "deleted", func(ev bus.Deleted) {
		if err := store.Search.RemoveEntity(ctx, ev.Entity, ev.ID); err != nil {
			slog.Error("search: remove entity failed", "entity", ev.Entity, "id", ev.ID, "error", err)
		}
	})
}

// reindex re-reads the current state of one entity and (re)indexes it.
// A rename is handled as delete-then-reinsert (ReindexRename) rather
// than an in-place update, bounding staleness to this single handler
// turn.
func reindex(ctx context.Context, store *catalog.Store, entity, id string) {
	var (
		title    string
		keywords []string
		err      error
	)

	switch entity {
	case bus.EntityTrack:
		t, fErr := store.Tracks.FindByID(ctx, id)
		if fErr != nil {
			err = fErr
			break
		}
		title = t.Title
		keywords = keywordsFrom(t.Title, t.Metadata.Genre)
	case bus.EntityAlbum:
		a, fErr := store.Albums.FindByID(ctx, id)
		if fErr != nil {
			err = fErr
			break
		}
		title = a.Title
		keywords = keywordsFrom(a.Title)
	case bus.EntityArtist:
		a, fErr := store.Artists.FindByID(ctx, id)
		if fErr != nil {
			err = fErr
			break
		}
		title = a.Name
		keywords = keywordsFrom(a.Name)
	case bus.EntityPlaylist:
		p, fErr := store.Playlists.FindByID(ctx, id)
		if fErr != nil {
			err = fErr
			break
		}
		title = p.Name
		keywords = keywordsFrom(p.Name)
	default:
		return // media, client, etc. are not searchable entity kinds
	}

	if err != nil {
		slog.Warn("search: entity vanished before reindex", "entity", entity, "id", id, "error", err)
		return
	}

	if rErr := store.Search.ReindexRename(ctx, entity, id); rErr != nil {
		slog.Error("search: clear stale rows failed", "entity", entity, "id", id, "error", rErr)
		return
	}
	if iErr := store.Search.IndexEntity(ctx, entity, id, title, keywords); iErr != nil {
		slog.Error("search: index entity failed", "entity", entity, "id", id, "error", iErr)
	}
}

// keywordsFrom lowercases and dedupes the given fields into the keyword
// set stored in search_terms.
func keywordsFrom(fields ...string) []string {
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
