package ws

import (
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/arung-agamani/soundvault/internal/bus"
)

// TestPlaylistTrackAddedFansOutToEverySession covers concrete scenario
// 5: one PlaylistTrackAdded event produces exactly one track_added
// message on every main-room session, carrying the link's order number.
func TestPlaylistTrackAddedFansOutToEverySession(t *testing.T) {
	h, srv := newTestHub(t)
	b := bus.New(16)
	t.Cleanup(func() { b.Close(context.Background()) })
	RegisterPlaylistBroadcasts(b, h)

	a := dial(t, srv)
	c := dial(t, srv)
	time.Sleep(50 * time.Millisecond)

	b.Dispatch(bus.PlaylistTrackAdded{PlaylistID: "P", TrackID: "T", OrderNumber: 7})

	for _, conn := range []*websocket.Conn{a, c} {
		msg := readJSON(t, conn, 2*time.Second)
		event, ok := msg["playlist_event"].(map[string]any)
		require.True(t, ok, "expected a playlist_event envelope, got %+v", msg)
		added, ok := event["track_added"].(map[string]any)
		require.True(t, ok, "expected a track_added variant, got %+v", event)
		require.Equal(t, "P", added["playlist_id"])
		require.Equal(t, "T", added["track_id"])
		require.EqualValues(t, 7, added["order_number"])
	}
}

// TestPlaylistDefaultChangedBroadcast covers the default_playlist
// variant of the playlist_event envelope.
func TestPlaylistDefaultChangedBroadcast(t *testing.T) {
	h, srv := newTestHub(t)
	b := bus.New(16)
	t.Cleanup(func() { b.Close(context.Background()) })
	RegisterPlaylistBroadcasts(b, h)

	conn := dial(t, srv)
	time.Sleep(50 * time.Millisecond)

	b.Dispatch(bus.PlaylistDefaultChanged{PlaylistID: "P2"})

	msg := readJSON(t, conn, 2*time.Second)
	event, ok := msg["playlist_event"].(map[string]any)
	require.True(t, ok, "expected a playlist_event envelope, got %+v", msg)
	def, ok := event["default_playlist"].(map[string]any)
	require.True(t, ok, "expected a default_playlist variant, got %+v", event)
	require.Equal(t, "P2", def["playlist_id"])
}
