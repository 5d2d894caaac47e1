package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/soundvault/internal/catalog"
)

func (s *Server) listAlbums(c *gin.Context) {
	cur := cursorFrom(c)
	items, err := s.store.Albums.List(c.Request.Context(), cur)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, pageResponse(items, cur, func(a catalog.Album) string { return a.ID }))
}

func (s *Server) getAlbum(c *gin.Context) {
	a, err := s.store.Albums.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, a)
}

type albumRequest struct {
	Title    string                `json:"title" binding:"required"`
	Year     int                   `json:"year"`
	Metadata catalog.MediaMetadata `json:"metadata"`
}

func (s *Server) createAlbum(c *gin.Context) {
	var req albumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := s.store.Albums.CreateOrUpdate(c.Request.Context(), catalog.CreateOrUpdateAlbumParams{
		Title: req.Title, Year: req.Year, Metadata: req.Metadata,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, a)
}

func (s *Server) updateAlbum(c *gin.Context) {
	var req albumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := s.store.Albums.Update(c.Request.Context(), c.Param("id"), req.Title, req.Year, req.Metadata)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, a)
}

func (s *Server) deleteAlbum(c *gin.Context) {
	if err := s.store.Albums.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": true})
}
