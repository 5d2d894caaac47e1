// Package scanner implements the directory walk, tag extraction, and
// artwork persistence that ingest a music tree into the catalog.
package scanner

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"

	"github.com/arung-agamani/soundvault/internal/catalog"
)

// Result summarizes a scan: how many media rows were touched and any
// per-file errors, which are non-fatal and collected rather than
// aborting the whole walk.
type Result struct {
	Scanned int
	Errors  map[string]error
}

// Config controls which file extensions are treated as audio/video/photo.
type Config struct {
	AudioFormats []string
	VideoFormats []string
	PhotoFormats []string
	ArtworkDir   string
}

// Scan walks root recursively and ingests every recognized file into the
// catalog through store. A second Scan over an unchanged tree performs
// only upserts and insert-or-ignores: no row count changes, no events
// for unchanged rows (see MediaRepo/TrackRepo CreateOrUpdate's
// change-detection).
func Scan(ctx context.Context, root string, store *catalog.Store, cfg Config) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", root)
	}

	res := &Result{Errors: make(map[string]error)}

	var paths []string
	err = filepath.Walk(root, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			res.Errors[path] = walkErr
			slog.Warn("scan: error accessing path", "path", path, "error", walkErr)
			return nil
		}
		if fi.IsDir() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", root, err)
	}
	sort.Strings(paths) // deterministic processing order

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		switch {
		case contains(cfg.AudioFormats, ext):
			if err := processAudio(ctx, store, cfg, path, ext); err != nil {
				res.Errors[path] = err
				slog.Warn("scan: failed to process audio file", "path", path, "error", err)
				continue
			}
			res.Scanned++
		case contains(cfg.PhotoFormats, ext):
			// Standalone photo files (not embedded artwork) are recorded
			// as photo Media rows too, but carry no track/album links.
			if _, err := store.Media.CreateOrUpdate(ctx, catalog.CreateOrUpdateMediaParams{
				Filename: filepath.Base(path), Path: path, MediaType: catalog.MediaPhoto,
			}); err != nil {
				res.Errors[path] = err
				continue
			}
			res.Scanned++
		default:
			// video and anything else unrecognized: skip
		}
	}

	slog.Info("scan complete", "root", root, "scanned", res.Scanned, "errors", len(res.Errors))
	return res, nil
}

func processAudio(ctx context.Context, store *catalog.Store, cfg Config, path, ext string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	meta := catalog.MediaMetadata{Pictures: map[string]string{}}
	m, tagErr := tag.ReadFrom(f)
	if tagErr == nil {
		populateMetadata(&meta, m)
		if pic := m.Picture(); pic != nil && meta.Album != "" {
			mediaID, err := persistArtwork(ctx, store, cfg.ArtworkDir, meta.Album, pic)
			if err != nil {
				slog.Warn("scan: failed to persist artwork", "path", path, "error", err)
			} else {
				meta.Pictures[normalizePictureType(string(pic.Type))] = mediaID
			}
		}
	} else {
		slog.Debug("scan: could not read tags", "path", path, "error", tagErr)
	}

	filename := filepath.Base(path)
	title := meta.Title
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	media, err := store.Media.CreateOrUpdate(ctx, catalog.CreateOrUpdateMediaParams{
		Filename: filename, Path: path, MediaType: catalog.MediaAudio, Metadata: meta,
	})
	if err != nil {
		return fmt.Errorf("upsert media: %w", err)
	}

	track, err := store.Tracks.CreateOrUpdate(ctx, catalog.CreateOrUpdateTrackParams{
		Title: title, MediaID: media.ID, Metadata: meta,
	})
	if err != nil {
		return fmt.Errorf("upsert track: %w", err)
	}

	var primaryArtistID string
	if meta.Artist != "" {
		for i, name := range splitArtists(meta.Artist) {
			artist, err := store.Artists.CreateOrUpdate(ctx, catalog.CreateOrUpdateArtistParams{Name: name})
			if err != nil {
				slog.Warn("scan: failed to upsert artist", "name", name, "error", err)
				continue
			}
			if err := store.Artists.LinkTrack(ctx, artist.ID, track.ID, i > 0); err != nil {
				slog.Warn("scan: failed to link artist to track", "artist", name, "track", track.ID, "error", err)
			}
			if i == 0 {
				primaryArtistID = artist.ID
			}
		}
	}

	if meta.Album != "" {
		album, err := store.Albums.CreateOrUpdate(ctx, catalog.CreateOrUpdateAlbumParams{
			Title: meta.Album, Year: meta.Year, Metadata: meta,
		})
		if err == nil {
			_ = store.Albums.LinkTrack(ctx, album.ID, track.ID)
			if primaryArtistID != "" {
				_ = store.Albums.LinkArtist(ctx, album.ID, primaryArtistID)
			}
		}
	}

	return nil
}

func populateMetadata(meta *catalog.MediaMetadata, m tag.Metadata) {
	meta.Title = m.Title()
	meta.Artist = m.Artist()
	meta.Album = m.Album()
	meta.Genre = m.Genre()
	meta.Year = m.Year()
	if n, _ := m.Track(); n != 0 {
		meta.Track = n
	}
	if n, _ := m.Disc(); n != 0 {
		meta.Disk = n
	}
	meta.Extra = normalizeRawTags(m.Raw())
}

// normalizeRawTags collapses a format's raw tag map into the generic
// lowercase/truncated/priv-stripped key space every tag source is
// flattened into, independent of which underlying tag revision produced
// it (ID3v2, FLAC vorbis comments, MP4 atoms, ...).
func normalizeRawTags(raw map[string]interface{}) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		key = normalizeTagKey(key)
		if key == "" {
			continue
		}
		out[key] = fmt.Sprintf("%v", value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeTagKey lowercases a raw tag key, truncates it to 26
// characters, and drops vendor-private "priv:*" keys entirely.
func normalizeTagKey(key string) string {
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "priv:") {
		return ""
	}
	if len(key) > 26 {
		key = key[:26]
	}
	return key
}

// splitArtists splits a comma-separated artist tag into individual names,
// trimming whitespace and dropping empties.
func splitArtists(artist string) []string {
	parts := strings.Split(artist, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// persistArtwork writes an embedded picture to disk under a stable,
// content-addressed filename and upserts a photo Media row for it.
func persistArtwork(ctx context.Context, store *catalog.Store, artworkDir, albumTitle string, pic *tag.Picture) (string, error) {
	if err := os.MkdirAll(artworkDir, 0o755); err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(albumTitle))
	ext := extFromMIME(pic.MIMEType)
	filename := fmt.Sprintf("%x%s", sum, ext)
	path := filepath.Join(artworkDir, filename)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, pic.Data, 0o644); err != nil {
			return "", err
		}
	}

	media, err := store.Media.CreateOrUpdate(ctx, catalog.CreateOrUpdateMediaParams{
		Filename: filename, Path: path, MediaType: catalog.MediaPhoto,
	})
	if err != nil {
		return "", err
	}
	return media.ID, nil
}

func extFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}

// normalizePictureType turns a raw picture type label ("Cover Art
// (Front)") into a lowercase, underscore-joined key ("cover_art_front").
func normalizePictureType(raw string) string {
	raw = strings.ToLower(raw)
	raw = strings.ReplaceAll(raw, "(", "")
	raw = strings.ReplaceAll(raw, ")", "")
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, " ", "_")
	if len(raw) > 26 {
		raw = raw[:26]
	}
	return raw
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
