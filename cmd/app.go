// Package cmd wires cobra subcommands onto the shared component
// bootstrap. Every component is constructed in one composition root and
// passed down explicitly instead of living in package-level globals.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/arung-agamani/soundvault/config"
	"github.com/arung-agamani/soundvault/internal/bus"
	"github.com/arung-agamani/soundvault/internal/catalog"
	"github.com/arung-agamani/soundvault/internal/decoder"
	"github.com/arung-agamani/soundvault/internal/gateway"
	"github.com/arung-agamani/soundvault/internal/player"
	"github.com/arung-agamani/soundvault/internal/queue"
	"github.com/arung-agamani/soundvault/internal/search"
	"github.com/arung-agamani/soundvault/internal/ws"
)

// app is the composition root: every long-lived component, constructed
// once and handed to whichever subcommand needs it.
type app struct {
	cfg     *config.Config
	bus     *bus.Bus
	store   *catalog.Store
	hub     *ws.Hub
	decoder *decoder.Worker
	queue   *queue.Manager
	player  *player.Service
	gateway *gateway.Server
}

// openStore prepares the on-disk layout and opens the catalog alone, for
// subcommands (seed, scan) that don't need the decoder/gateway stack.
func openStore(ctx context.Context, cfg *config.Config) (*catalog.Store, *bus.Bus, error) {
	if err := os.MkdirAll(cfg.DBLocation, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create db location: %w", err)
	}
	if err := os.MkdirAll(cfg.ArtworkDir(), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create artwork dir: %w", err)
	}
	b := bus.New(256)
	store, err := catalog.Open(ctx, cfg.DBPath(), b, cfg.BootstrapPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	return store, b, nil
}

// newApp builds every component per the dependency order the concurrency
// model requires (store → hub → decoder → queue → player → gateway) but
// starts nothing; call start to launch the background goroutines.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, b, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	search.Register(ctx, b, store)

	hub := ws.New()
	ws.RegisterPlaylistBroadcasts(b, hub)
	dec := decoder.New(decoder.OpenFile, decoder.NullSink{})
	q := queue.New(dec.Commands())
	p := player.New(store, hub, dec, q)
	gw := gateway.New(cfg, store, hub, p)

	return &app{
		cfg: cfg, bus: b, store: store, hub: hub,
		decoder: dec, queue: q, player: p, gateway: gw,
	}, nil
}

// start launches every background goroutine (hub actor, decoder worker,
// queue manager, progress bridge) and returns a func that stops them.
func (a *app) start(ctx context.Context) func() {
	stop := make(chan struct{})
	go a.hub.Run()
	go a.decoder.Run(stop)
	go a.queue.Run(stop)
	a.player.Start(ctx)
	return func() {
		close(stop)
		a.hub.Stop()
		a.bus.Close(ctx)
		a.store.Close()
	}
}
