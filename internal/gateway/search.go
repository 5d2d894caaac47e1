package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// search implements GET /api/v1/search?_q=keyword, fronting the search
// index built from catalog mutation events.
func (s *Server) search(c *gin.Context) {
	q := c.Query("_q")
	if q == "" {
		failWith(c, http.StatusBadRequest, "_q is required")
		return
	}
	hits, err := s.store.Search.Search(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, hits)
}

// searchTracks is the track-scoped convenience alias at
// GET /api/v1/tracks/search?_q=keyword, filtering the shared search
// index down to track hits only.
func (s *Server) searchTracks(c *gin.Context) {
	q := c.Query("_q")
	if q == "" {
		failWith(c, http.StatusBadRequest, "_q is required")
		return
	}
	hits, err := s.store.Search.Search(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	tracks := hits[:0]
	for _, h := range hits {
		if h.EntityKind == "track" {
			tracks = append(tracks, h)
		}
	}
	ok(c, tracks)
}
