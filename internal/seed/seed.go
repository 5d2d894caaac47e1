// Package seed generates a synthetic catalog for exercising pagination,
// search, and playback without a real music tree on disk.
package seed

import (
	"context"
	"fmt"

	"github.com/arung-agamani/soundvault/internal/catalog"
)

// Generate inserts total synthetic tracks, each backed by its own
// synthetic Media row and linked to a freshly named Album and Artist,
// returning the created track IDs.
func Generate(ctx context.Context, store *catalog.Store, total int) ([]string, error) {
	ids := make([]string, 0, total)
	for i := 0; i < total; i++ {
		title := fmt.Sprintf("Seed Track %d", i+1)
		media, err := store.Media.CreateOrUpdate(ctx, catalog.CreateOrUpdateMediaParams{
			Filename:  fmt.Sprintf("seed-%d.mp3", i+1),
			Path:      fmt.Sprintf("/seed/seed-%d.mp3", i+1),
			MediaType: catalog.MediaAudio,
			Metadata:  catalog.MediaMetadata{Title: title},
		})
		if err != nil {
			return ids, fmt.Errorf("seed media %d: %w", i+1, err)
		}

		artist, err := store.Artists.CreateOrUpdate(ctx, catalog.CreateOrUpdateArtistParams{
			Name: fmt.Sprintf("Seed Artist %d", i+1),
		})
		if err != nil {
			return ids, fmt.Errorf("seed artist %d: %w", i+1, err)
		}

		album, err := store.Albums.CreateOrUpdate(ctx, catalog.CreateOrUpdateAlbumParams{
			Title: fmt.Sprintf("Seed Album %d", i+1),
			Year:  2020 + i,
		})
		if err != nil {
			return ids, fmt.Errorf("seed album %d: %w", i+1, err)
		}

		track, err := store.Tracks.CreateOrUpdate(ctx, catalog.CreateOrUpdateTrackParams{
			Title:   title,
			MediaID: media.ID,
		})
		if err != nil {
			return ids, fmt.Errorf("seed track %d: %w", i+1, err)
		}

		if err := store.Albums.LinkTrack(ctx, album.ID, track.ID); err != nil {
			return ids, err
		}
		if err := store.Artists.LinkTrack(ctx, artist.ID, track.ID, false); err != nil {
			return ids, err
		}

		ids = append(ids, track.ID)
	}
	return ids, nil
}
