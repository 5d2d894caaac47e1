package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type idRequest struct {
	ID string `json:"id" binding:"required"`
}

func (s *Server) playTrack(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.player.PlayTrack(c.Request.Context(), req.ID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"playing": req.ID})
}

func (s *Server) playAlbum(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.player.PlayAlbum(c.Request.Context(), req.ID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"playing_album": req.ID})
}

func (s *Server) playPlaylist(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.player.PlayPlaylist(c.Request.Context(), req.ID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"playing_playlist": req.ID})
}

func (s *Server) controlPause(c *gin.Context) {
	if err := s.player.ControlPause(); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"state": "paused"})
}

func (s *Server) controlResume(c *gin.Context) {
	if err := s.player.ControlResume(); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"state": "playing"})
}

func (s *Server) controlNext(c *gin.Context) {
	s.player.ControlNext()
	ok(c, gin.H{"skipped": "next"})
}

func (s *Server) controlPrevious(c *gin.Context) {
	s.player.ControlPrevious()
	ok(c, gin.H{"skipped": "previous"})
}
