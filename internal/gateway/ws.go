package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// liveWS upgrades the connection into the WS hub's main room. The live
// feed is a whole-deployment opt-in: when disabled, every upgrade
// attempt is rejected with 406 rather than silently connecting to
// nothing.
func (s *Server) liveWS(c *gin.Context) {
	if !s.cfg.WSEnabled {
		failWith(c, http.StatusNotAcceptable, "live websocket feed is disabled")
		return
	}
	if err := s.hub.Upgrade(c.Writer, c.Request); err != nil {
		failWith(c, http.StatusBadRequest, "websocket upgrade failed")
		return
	}
}
