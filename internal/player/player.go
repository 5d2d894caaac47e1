// Package player wires the decoder worker, queue manager, and progress
// bridge together behind one synchronous facade the HTTP gateway calls
// into, and drives the WebSocket hub with player_event broadcasts.
package player

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/arung-agamani/soundvault/internal/apperr"
	"github.com/arung-agamani/soundvault/internal/catalog"
	"github.com/arung-agamani/soundvault/internal/decoder"
	"github.com/arung-agamani/soundvault/internal/queue"
	"github.com/arung-agamani/soundvault/internal/ws"
)

// State is the decoder's externally-observable playback state, tracked
// by the progress bridge so the facade can answer "is anything playing"
// synchronously without asking the decoder goroutine (the
// Resume-with-nothing-playing check needs this).
type State int32

const (
	Idle State = iota
	Playing
	Paused
)

// Service is the player facade: everything an HTTP handler needs to
// start, stop, and steer playback, plus the WS broadcasts those actions
// and the decoder's own progress updates produce.
type Service struct {
	store   *catalog.Store
	hub     *ws.Hub
	decoder *decoder.Worker
	queue   *queue.Manager

	state   atomic.Int32
	mu      sync.RWMutex
	current string // track ID currently at the queue's head
}

// New constructs a Service. Call Start to launch the progress-bridge
// goroutine; the decoder and queue manager are started through their
// own Run methods.
func New(store *catalog.Store, hub *ws.Hub, dec *decoder.Worker, q *queue.Manager) *Service {
	return &Service{store: store, hub: hub, decoder: dec, queue: q}
}

// Start launches the progress bridge: a goroutine ranging over the
// decoder's Updates channel, forwarding Progress as a WS broadcast,
// tracking playback State, and issuing an implicit queue.Next on a
// Finished so playback auto-advances without the decoder ever calling
// into the queue.
func (s *Service) Start(ctx context.Context) {
	go s.bridge(ctx)
}

func (s *Service) bridge(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-s.decoder.Updates():
			if !ok {
				return
			}
			switch upd := u.(type) {
			case decoder.Progress:
				// Only Idle→Playing: a progress update already in flight
				// when ControlPause stored Paused must not flip it back.
				s.state.CompareAndSwap(int32(Idle), int32(Playing))
				s.hub.BroadcastMain(ws.NewProgressEnvelope(ws.ToHMS(upd.Position), ws.ToHMS(upd.Total)))
			case decoder.Finished:
				s.state.Store(int32(Idle))
				if upd.Err != nil {
					slog.Warn("player: track ended with error", "path", upd.Path, "error", upd.Err)
				}
				// Auto-advance: treat a finish exactly like an
				// externally-issued Next, whether it was a clean
				// end-of-stream or an I/O-terminated track.
				s.queue.Commands() <- queue.Next{}
			}
		}
	}
}

// PlayTrack resets the queue to a single track and plays it.
func (s *Service) PlayTrack(ctx context.Context, trackID string) error {
	t, err := s.store.Tracks.FindByID(ctx, trackID)
	if err != nil {
		return err
	}
	media, err := s.store.Media.FindByID(ctx, t.MediaID)
	if err != nil {
		return err
	}
	s.resetAndQueue(queue.Entry{TrackID: t.ID, Path: media.Path})
	s.setCurrent(t.ID)
	s.hub.BroadcastMain(ws.NewPlayerCommandEnvelope("play_track", map[string]any{"track_id": t.ID}))
	return nil
}

// PlayAlbum resets the queue to every track on an album, in catalog
// order, and plays the first.
func (s *Service) PlayAlbum(ctx context.Context, albumID string) error {
	tracks, err := s.store.Tracks.ByAlbum(ctx, albumID)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return apperr.NotFound("album has no tracks")
	}
	if err := s.queueTracks(ctx, tracks); err != nil {
		return err
	}
	s.hub.BroadcastMain(ws.NewPlayerCommandEnvelope("play_album", map[string]any{"album_id": albumID}))
	return nil
}

// PlayPlaylist resets the queue to every track on a playlist, in
// playlist order, and plays the first.
func (s *Service) PlayPlaylist(ctx context.Context, playlistID string) error {
	tracks, err := s.store.Tracks.ByPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return apperr.NotFound("playlist has no tracks")
	}
	if err := s.queueTracks(ctx, tracks); err != nil {
		return err
	}
	s.hub.BroadcastMain(ws.NewPlayerCommandEnvelope("play_playlist", map[string]any{"playlist_id": playlistID}))
	return nil
}

func (s *Service) queueTracks(ctx context.Context, tracks []catalog.Track) error {
	s.queue.Commands() <- queue.Reset{}
	for _, t := range tracks {
		media, err := s.store.Media.FindByID(ctx, t.MediaID)
		if err != nil {
			return err
		}
		s.queue.Commands() <- queue.Queue{Entry: queue.Entry{TrackID: t.ID, Path: media.Path}}
	}
	s.setCurrent(tracks[0].ID)
	s.queue.Commands() <- queue.Play{}
	return nil
}

func (s *Service) resetAndQueue(e queue.Entry) {
	s.queue.Commands() <- queue.Reset{}
	s.queue.Commands() <- queue.Queue{Entry: e}
	s.queue.Commands() <- queue.Play{}
}

// ControlPause pauses the active playback.
func (s *Service) ControlPause() error {
	if State(s.state.Load()) != Playing {
		return apperr.Invalid("nothing is playing")
	}
	s.decoder.Commands() <- decoder.Pause{}
	s.state.Store(int32(Paused))
	s.hub.BroadcastMain(ws.NewPlayerCommandEnvelope("play", map[string]any{"state": "paused"}))
	return nil
}

// ControlResume resumes a paused playback. Calling Resume while the
// decoder is Idle is a no-op that returns a typed error rather than
// silently succeeding or panicking.
func (s *Service) ControlResume() error {
	if State(s.state.Load()) != Paused {
		return apperr.Invalid("nothing to resume")
	}
	s.decoder.Commands() <- decoder.Resume{}
	s.state.Store(int32(Playing))
	s.hub.BroadcastMain(ws.NewPlayerCommandEnvelope("play", map[string]any{"state": "resumed"}))
	return nil
}

// ControlNext skips to the next track in the queue.
func (s *Service) ControlNext() {
	s.queue.Commands() <- queue.Next{}
	s.hub.BroadcastMain(ws.NewPlayerCommandEnvelope("skip", map[string]any{"direction": "next"}))
}

// ControlPrevious moves back one track in the queue.
func (s *Service) ControlPrevious() {
	s.queue.Commands() <- queue.Previous{}
	s.hub.BroadcastMain(ws.NewPlayerCommandEnvelope("skip", map[string]any{"direction": "previous"}))
}

// State reports the current playback state.
func (s *Service) State() State { return State(s.state.Load()) }

// Current returns the track ID currently at the head of the queue.
func (s *Service) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != ""
}

func (s *Service) setCurrent(trackID string) {
	s.mu.Lock()
	s.current = trackID
	s.mu.Unlock()
}
