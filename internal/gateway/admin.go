package gateway

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/soundvault/internal/apperr"
	"github.com/arung-agamani/soundvault/internal/scanner"
	"github.com/arung-agamani/soundvault/internal/seed"
)

type scanRequest struct {
	Path string `json:"path" binding:"required"`
}

// adminScan triggers a directory walk over the given path, ingesting or
// re-ingesting every recognized file into the catalog. Rescans of an
// unchanged tree are idempotent no-ops (see MediaRepo/TrackRepo
// CreateOrUpdate), which is what makes this endpoint double as the
// "reconcile" route.
func (s *Server) adminScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := scanner.Scan(c.Request.Context(), req.Path, s.store, scanner.Config{
		AudioFormats: s.cfg.AudioFormats,
		VideoFormats: s.cfg.VideoFormats,
		PhotoFormats: s.cfg.PhotoFormats,
		ArtworkDir:   s.cfg.ArtworkDir(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	errs := make(map[string]string, len(res.Errors))
	for path, e := range res.Errors {
		errs[path] = e.Error()
	}
	ok(c, gin.H{"scanned": res.Scanned, "errors": errs})
}

type seedRequest struct {
	Total int `json:"total" binding:"required"`
}

// adminSeed generates a synthetic catalog of the requested size, useful
// for exercising pagination and search without a real music tree.
func (s *Server) adminSeed(c *gin.Context) {
	var req seedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Total <= 0 {
		failWith(c, http.StatusBadRequest, "total must be a positive integer")
		return
	}
	trackIDs, err := seed.Generate(c.Request.Context(), s.store, req.Total)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"track_ids": trackIDs})
}

// adminBootstrap returns the first-boot admin/guest credentials exactly
// once: the record file written at startup is deleted as soon as it's
// served, so a second call 404s.
func (s *Server) adminBootstrap(c *gin.Context) {
	path := s.cfg.BootstrapPath()
	raw, err := os.ReadFile(path)
	if err != nil {
		fail(c, apperr.NotFound("bootstrap record already consumed or not yet written"))
		return
	}
	_ = os.Remove(path)

	record := map[string]string{}
	for _, line := range strings.Split(string(raw), "\n") {
		kv := strings.SplitN(line, "=", 2)
		if len(kv) == 2 {
			record[kv[0]] = kv[1]
		}
	}
	ok(c, record)
}
