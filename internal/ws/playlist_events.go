package ws

import "github.com/arung-agamani/soundvault/internal/bus"

// RegisterPlaylistBroadcasts subscribes the hub to the catalog's
// playlist-mutation events and forwards each one as a playlist_event
// broadcast to every main-room session, the same fan-out the progress
// bridge uses for player_event. Without this registration the bus event
// fires but nothing ever reaches a socket.
func RegisterPlaylistBroadcasts(b *bus.Bus, hub *Hub) {
	bus.Subscribe(b, "playlist_track_added", func(ev bus.PlaylistTrackAdded) {
		hub.BroadcastMain(NewPlaylistEnvelope("track_added", PlaylistTrackAddedPayload{
			OrderNumber: ev.OrderNumber,
			PlaylistID:  ev.PlaylistID,
			TrackID:     ev.TrackID,
		}))
	})
	bus.Subscribe(b, "playlist_track_removed", func(ev bus.PlaylistTrackRemoved) {
		hub.BroadcastMain(NewPlaylistEnvelope("track_removed", PlaylistTrackRemovedPayload{
			PlaylistID: ev.PlaylistID,
			TrackID:    ev.TrackID,
		}))
	})
	bus.Subscribe(b, "playlist_default_changed", func(ev bus.PlaylistDefaultChanged) {
		hub.BroadcastMain(NewPlaylistEnvelope("default_playlist", PlaylistDefaultPayload{
			PlaylistID: ev.PlaylistID,
		}))
	})
}
