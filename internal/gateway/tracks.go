package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/soundvault/internal/catalog"
)

func (s *Server) listTracks(c *gin.Context) {
	cur := cursorFrom(c)
	items, err := s.store.Tracks.List(c.Request.Context(), cur)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, pageResponse(items, cur, func(t catalog.Track) string { return t.ID }))
}

func (s *Server) getTrack(c *gin.Context) {
	t, err := s.store.Tracks.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, t)
}

type updateTrackRequest struct {
	Title    string                `json:"title" binding:"required"`
	Metadata catalog.MediaMetadata `json:"metadata"`
}

func (s *Server) updateTrack(c *gin.Context) {
	var req updateTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := s.store.Tracks.Update(c.Request.Context(), c.Param("id"), req.Title, req.Metadata)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, t)
}

func (s *Server) deleteTrack(c *gin.Context) {
	if err := s.store.Tracks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": true})
}

func (s *Server) tracksByAlbum(c *gin.Context) {
	items, err := s.store.Tracks.ByAlbum(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, items)
}

func (s *Server) tracksByPlaylist(c *gin.Context) {
	items, err := s.store.Tracks.ByPlaylist(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, items)
}

func (s *Server) tracksByArtist(c *gin.Context) {
	items, err := s.store.Tracks.ByArtist(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, items)
}
