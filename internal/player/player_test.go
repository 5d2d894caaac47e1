package player

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arung-agamani/soundvault/internal/apperr"
	"github.com/arung-agamani/soundvault/internal/bus"
	"github.com/arung-agamani/soundvault/internal/catalog"
	"github.com/arung-agamani/soundvault/internal/decoder"
	"github.com/arung-agamani/soundvault/internal/queue"
	"github.com/arung-agamani/soundvault/internal/ws"
)

// slowSource never finishes on its own within the test window, giving
// tests time to observe mid-playback state (e.g. ControlPause) before
// the track would otherwise end.
type slowSource struct{ packets int }

func (s *slowSource) Total() time.Duration { return time.Hour }
func (s *slowSource) NextPacket() (decoder.Packet, error) {
	s.packets++
	time.Sleep(5 * time.Millisecond)
	return decoder.Packet{Samples: []byte("x"), Channels: 2, SampleRate: 44100}, nil
}
func (s *slowSource) Close() error { return nil }

func newTestService(t *testing.T) (*Service, *catalog.Store) {
	t.Helper()
	return newTestServiceWith(t, func(path string) (decoder.Source, error) { return &slowSource{}, nil })
}

func newTestServiceWith(t *testing.T, open decoder.OpenSourceFunc) (*Service, *catalog.Store) {
	t.Helper()
	b := bus.New(64)
	t.Cleanup(func() { b.Close(context.Background()) })

	path := filepath.Join(t.TempDir(), "data.db")
	store, err := catalog.Open(context.Background(), path, b, "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hub := ws.New()
	go hub.Run()

	dec := decoder.New(open, decoder.NewMemorySink())
	q := queue.New(dec.Commands())

	decStop := make(chan struct{})
	qStop := make(chan struct{})
	t.Cleanup(func() { close(decStop); close(qStop) })
	go dec.Run(decStop)
	go q.Run(qStop)

	svc := New(store, hub, dec, q)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	svc.Start(ctx)

	return svc, store
}

func mustTrack(t *testing.T, store *catalog.Store, name string) catalog.Track {
	t.Helper()
	media, err := store.Media.CreateOrUpdate(context.Background(), catalog.CreateOrUpdateMediaParams{
		Filename: name + ".mp3", Path: "/m/" + name, MediaType: catalog.MediaAudio,
	})
	require.NoError(t, err)
	track, err := store.Tracks.CreateOrUpdate(context.Background(), catalog.CreateOrUpdateTrackParams{
		Title: name, MediaID: media.ID,
	})
	require.NoError(t, err)
	return track
}

func waitForState(t *testing.T, svc *Service, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if svc.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state never reached %v, still %v", want, svc.State())
}

func TestPlayTrackTransitionsToPlaying(t *testing.T) {
	svc, store := newTestService(t)
	tr := mustTrack(t, store, "song-a")

	require.NoError(t, svc.PlayTrack(context.Background(), tr.ID))
	waitForState(t, svc, Playing)

	current, ok := svc.Current()
	require.True(t, ok)
	require.Equal(t, tr.ID, current)
}

// TestControlResumeWithNothingPlayingIsATypedError: calling Resume
// while Idle returns a typed error instead of silently succeeding.
func TestControlResumeWithNothingPlayingIsATypedError(t *testing.T) {
	svc, _ := newTestService(t)

	require.Equal(t, Idle, svc.State(), "a freshly started service should be Idle")
	err := svc.ControlResume()
	require.Error(t, err, "ControlResume with nothing playing must return an error")
	require.True(t, apperr.IsInvalid(err), "ControlResume's error should be an apperr.Invalid, got %v", err)
}

func TestControlPauseThenResume(t *testing.T) {
	svc, store := newTestService(t)
	tr := mustTrack(t, store, "song-b")

	require.NoError(t, svc.PlayTrack(context.Background(), tr.ID))
	waitForState(t, svc, Playing)

	require.NoError(t, svc.ControlPause())
	require.Equal(t, Paused, svc.State())

	require.NoError(t, svc.ControlResume())
	waitForState(t, svc, Playing)
}

// TestControlPauseWithNothingPlayingIsATypedError mirrors the Resume
// case: pausing an Idle player is also rejected rather than silently
// queuing a pause command nothing will ever consume.
func TestControlPauseWithNothingPlayingIsATypedError(t *testing.T) {
	svc, _ := newTestService(t)
	require.Error(t, svc.ControlPause(), "ControlPause with nothing playing must return an error")
}

// finiteSource ends after a fixed number of packets, so a playback
// finishes on its own and the auto-advance path can be observed.
type finiteSource struct{ packets, sent int }

func (s *finiteSource) Total() time.Duration { return time.Duration(s.packets) * time.Second }
func (s *finiteSource) NextPacket() (decoder.Packet, error) {
	if s.sent >= s.packets {
		return decoder.Packet{}, io.EOF
	}
	s.sent++
	return decoder.Packet{
		Samples: []byte("x"), Timestamp: time.Duration(s.sent) * time.Second,
		Channels: 2, SampleRate: 44100,
	}, nil
}
func (s *finiteSource) Close() error { return nil }

// TestQueueAutoAdvancesOnNaturalFinish: after a track ends on its own,
// the next queued track starts playing with no external command.
func TestQueueAutoAdvancesOnNaturalFinish(t *testing.T) {
	svc, store := newTestServiceWith(t, func(path string) (decoder.Source, error) {
		return &finiteSource{packets: 2}, nil
	})

	tr1 := mustTrack(t, store, "first")
	tr2 := mustTrack(t, store, "second")
	playlist, err := store.Playlists.Create(context.Background(), catalog.CreatePlaylistParams{Name: "Up Next"})
	require.NoError(t, err)
	_, err = store.Playlists.AddTrack(context.Background(), playlist.ID, tr1.ID)
	require.NoError(t, err)
	_, err = store.Playlists.AddTrack(context.Background(), playlist.ID, tr2.ID)
	require.NoError(t, err)

	require.NoError(t, svc.PlayPlaylist(context.Background(), playlist.ID))

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, idx := svc.queue.Snapshot(); idx == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	_, idx := svc.queue.Snapshot()
	t.Fatalf("queue never auto-advanced past the finished track, index still %d", idx)
}
