package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/soundvault/internal/catalog"
)

func (s *Server) listPlaylists(c *gin.Context) {
	cur := cursorFrom(c)
	items, err := s.store.Playlists.List(c.Request.Context(), cur)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, pageResponse(items, cur, func(p catalog.Playlist) string { return p.ID }))
}

func (s *Server) getDefaultPlaylist(c *gin.Context) {
	p, err := s.store.Playlists.Default(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, p)
}

func (s *Server) getPlaylist(c *gin.Context) {
	p, err := s.store.Playlists.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, p)
}

type createPlaylistRequest struct {
	Name        string `json:"name" binding:"required"`
	IsDefault   bool   `json:"is_default"`
	Description string `json:"description"`
}

func (s *Server) createPlaylist(c *gin.Context) {
	var req createPlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := s.store.Playlists.Create(c.Request.Context(), catalog.CreatePlaylistParams{
		Name: req.Name, IsDefault: req.IsDefault, Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, p)
}

type updatePlaylistRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsDefault   bool   `json:"is_default"`
}

func (s *Server) updatePlaylist(c *gin.Context) {
	var req updatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	id := c.Param("id")
	p, err := s.store.Playlists.Update(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	if req.IsDefault && !p.IsDefault {
		if err := s.store.Playlists.SetDefault(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		p.IsDefault = true
	}
	ok(c, p)
}

func (s *Server) deletePlaylist(c *gin.Context) {
	if err := s.store.Playlists.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": true})
}

type playlistTrackLink struct {
	PlaylistID string `json:"playlist_id" binding:"required"`
	TrackID    string `json:"track_id" binding:"required"`
}

// addPlaylistTracks links a batch of (playlist, track) pairs; the body
// is an array so a client can drop a whole selection onto a playlist in
// one call. Each successful link fires its own track_added broadcast.
func (s *Server) addPlaylistTracks(c *gin.Context) {
	var links []playlistTrackLink
	if err := c.ShouldBindJSON(&links); err != nil || len(links) == 0 {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	added := make([]gin.H, 0, len(links))
	for _, l := range links {
		orderNumber, err := s.store.Playlists.AddTrack(c.Request.Context(), l.PlaylistID, l.TrackID)
		if err != nil {
			fail(c, err)
			return
		}
		added = append(added, gin.H{
			"order_number": orderNumber, "playlist_id": l.PlaylistID, "track_id": l.TrackID,
		})
	}
	ok(c, added)
}

func (s *Server) removePlaylistTracks(c *gin.Context) {
	var links []playlistTrackLink
	if err := c.ShouldBindJSON(&links); err != nil || len(links) == 0 {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, l := range links {
		if err := s.store.Playlists.RemoveTrack(c.Request.Context(), l.PlaylistID, l.TrackID); err != nil {
			fail(c, err)
			return
		}
	}
	ok(c, gin.H{"removed": len(links)})
}
