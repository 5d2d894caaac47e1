package ws

import "time"

// ToHMS converts a time.Duration into the [hours, minutes, fractional
// seconds] tuple the progress envelope carries on the wire.
func ToHMS(d time.Duration) [3]float64 {
	total := d.Seconds()
	h := int(total) / 3600
	m := (int(total) % 3600) / 60
	s := total - float64(h*3600+m*60)
	return [3]float64{float64(h), float64(m), s}
}

// ProgressEnvelope is the outbound `{"player_event":{"progress":...}}`
// message.
type ProgressEnvelope struct {
	PlayerEvent struct {
		Progress struct {
			Position [3]float64 `json:"position"`
			Total    [3]float64 `json:"total"`
		} `json:"progress"`
	} `json:"player_event"`
}

// NewProgressEnvelope builds a ProgressEnvelope from position/total
// durations already converted to the [h,m,s] wire shape.
func NewProgressEnvelope(position, total [3]float64) ProgressEnvelope {
	var e ProgressEnvelope
	e.PlayerEvent.Progress.Position = position
	e.PlayerEvent.Progress.Total = total
	return e
}

// PlayerCommandEnvelope wraps the play_track/play_album/play_playlist/
// play/skip player_event variants, whose payload shape varies by kind.
type PlayerCommandEnvelope struct {
	PlayerEvent map[string]any `json:"player_event"`
}

// NewPlayerCommandEnvelope builds a player_event envelope for a given
// verb ("play_track", "play_album", "play_playlist", "play", "skip").
func NewPlayerCommandEnvelope(verb string, payload any) PlayerCommandEnvelope {
	return PlayerCommandEnvelope{PlayerEvent: map[string]any{verb: payload}}
}

// PlaylistTrackAddedPayload is the body of a track_added playlist_event.
type PlaylistTrackAddedPayload struct {
	OrderNumber int64  `json:"order_number"`
	PlaylistID  string `json:"playlist_id"`
	TrackID     string `json:"track_id"`
}

// PlaylistTrackRemovedPayload is the body of a track_removed playlist_event.
type PlaylistTrackRemovedPayload struct {
	PlaylistID string `json:"playlist_id"`
	TrackID    string `json:"track_id"`
}

// PlaylistDefaultPayload is the body of a default_playlist playlist_event.
type PlaylistDefaultPayload struct {
	PlaylistID string `json:"playlist_id"`
}

// NewPlaylistEnvelope wraps a playlist_event variant.
func NewPlaylistEnvelope(verb string, payload any) map[string]any {
	return map[string]any{"playlist_event": map[string]any{verb: payload}}
}
