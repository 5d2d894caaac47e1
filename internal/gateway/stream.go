package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// streamTrack resolves a Track to its backing Media file and serves it
// with byte-range support (http.ServeFile honors Range automatically),
// letting a browser's <audio> element seek without a custom handler.
func (s *Server) streamTrack(c *gin.Context) {
	track, err := s.store.Tracks.FindByID(c.Request.Context(), c.Param("trackId"))
	if err != nil {
		fail(c, err)
		return
	}
	media, err := s.store.Media.FindByID(c.Request.Context(), track.MediaID)
	if err != nil {
		fail(c, err)
		return
	}
	http.ServeFile(c.Writer, c.Request, media.Path)
}

// serveMedia serves a Media row's backing file directly, used for
// extracted artwork and any media not wrapped in a Track.
func (s *Server) serveMedia(c *gin.Context) {
	media, err := s.store.Media.FindByID(c.Request.Context(), c.Param("mediaId"))
	if err != nil {
		fail(c, err)
		return
	}
	http.ServeFile(c.Writer, c.Request, media.Path)
}
