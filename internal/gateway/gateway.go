package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/soundvault/config"
	"github.com/arung-agamani/soundvault/internal/catalog"
	"github.com/arung-agamani/soundvault/internal/player"
	"github.com/arung-agamani/soundvault/internal/ws"
)

const httpShutdownTimeout = 5 * time.Second

// Server is the HTTP gateway: a gin engine wired to the catalog
// store, the player facade, and the WS hub, with cursor-paginated list
// endpoints and bearer/query/cookie auth.
type Server struct {
	cfg    *config.Config
	store  *catalog.Store
	hub    *ws.Hub
	player *player.Service
	engine *gin.Engine
}

// New builds the gin engine and registers every route.
func New(cfg *config.Config, store *catalog.Store, hub *ws.Hub, p *player.Service) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(securityHeaders())

	s := &Server{cfg: cfg, store: store, hub: hub, player: p, engine: engine}
	s.routes()
	return s
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.HTTPHost + ":" + s.cfg.HTTPPort
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http gateway listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Next()
	}
}

func (s *Server) routes() {
	s.engine.Static("/static", s.cfg.StaticLocation)

	s.engine.Use(s.authMiddleware())

	open := s.engine.Group("/open/api/v1")
	{
		open.GET("/clients/auth/:loginToken", s.exchangeLoginToken)
	}

	api := s.engine.Group("/api/v1")
	{
		clients := api.Group("/clients", requireUser())
		clients.GET("", requireAdmin(), s.listClients)
		clients.GET("/me", s.getSelf)
		clients.POST("", requireAdmin(), s.createClient)
		clients.PUT("/:id", requireAdmin(), s.updateClient)
		clients.DELETE("/:id", requireAdmin(), s.deleteClient)
		clients.GET("/token-reset/:id", requireAdmin(), s.resetClientToken)

		tracks := api.Group("/tracks", requireUser())
		tracks.GET("", s.listTracks)
		tracks.GET("/search", s.searchTracks)
		tracks.GET("/:id", s.getTrack)
		tracks.PUT("/:id", requireAdmin(), s.updateTrack)
		tracks.DELETE("/:id", requireAdmin(), s.deleteTrack)
		tracks.GET("/album/:id", s.tracksByAlbum)
		tracks.GET("/playlist/:id", s.tracksByPlaylist)
		tracks.GET("/artist/:id", s.tracksByArtist)

		albums := api.Group("/albums", requireUser())
		albums.GET("", s.listAlbums)
		albums.GET("/:id", s.getAlbum)
		albums.POST("", requireAdmin(), s.createAlbum)
		albums.PUT("/:id", requireAdmin(), s.updateAlbum)
		albums.DELETE("/:id", requireAdmin(), s.deleteAlbum)

		artists := api.Group("/artists", requireUser())
		artists.GET("", s.listArtists)
		artists.GET("/:id", s.getArtist)
		artists.POST("", requireAdmin(), s.createArtist)
		artists.PUT("/:id", requireAdmin(), s.updateArtist)

		playlists := api.Group("/playlists", requireUser())
		playlists.GET("", s.listPlaylists)
		playlists.GET("/default", s.getDefaultPlaylist)
		playlists.GET("/:id", s.getPlaylist)
		playlists.POST("", requireAdmin(), s.createPlaylist)
		playlists.PUT("/:id", requireAdmin(), s.updatePlaylist)
		playlists.DELETE("/:id", requireAdmin(), s.deletePlaylist)
		playlists.POST("/add-tracks", requireAdmin(), s.addPlaylistTracks)
		playlists.POST("/remove-tracks", requireAdmin(), s.removePlaylistTracks)

		api.GET("/search", requireUser(), s.search)

		api.GET("/stream/:trackId", requireUser(), s.streamTrack)
		api.GET("/serve/:mediaId", requireUser(), s.serveMedia)

		pl := api.Group("/player", requireUser())
		pl.POST("/play-track", s.playTrack)
		pl.POST("/play-album", s.playAlbum)
		pl.POST("/play-playlist", s.playPlaylist)
		pl.POST("/control-pause", s.controlPause)
		pl.POST("/control-resume", s.controlResume)
		pl.POST("/control-next", s.controlNext)
		pl.POST("/control-previous", s.controlPrevious)

		admin := api.Group("/admin", requireAdmin())
		admin.POST("/scan", s.adminScan)
		admin.POST("/reconcile", s.adminScan)
		admin.POST("/seed", s.adminSeed)
		admin.GET("/bootstrap", s.adminBootstrap)

		api.GET("/live/ws", requireUser(), s.liveWS)
	}
}
