package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/soundvault/internal/catalog"
)

func (s *Server) listArtists(c *gin.Context) {
	cur := cursorFrom(c)
	items, err := s.store.Artists.List(c.Request.Context(), cur)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, pageResponse(items, cur, func(a catalog.Artist) string { return a.ID }))
}

func (s *Server) getArtist(c *gin.Context) {
	a, err := s.store.Artists.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, a)
}

type artistRequest struct {
	Name     string                `json:"name" binding:"required"`
	Metadata catalog.MediaMetadata `json:"metadata"`
}

func (s *Server) createArtist(c *gin.Context) {
	var req artistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := s.store.Artists.CreateOrUpdate(c.Request.Context(), catalog.CreateOrUpdateArtistParams{
		Name: req.Name, Metadata: req.Metadata,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, a)
}

func (s *Server) updateArtist(c *gin.Context) {
	var req artistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := s.store.Artists.Update(c.Request.Context(), c.Param("id"), req.Name, req.Metadata)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, a)
}
