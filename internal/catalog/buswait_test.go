package catalog

import (
	"sync/atomic"
	"time"

	"github.com/arung-agamani/soundvault/internal/bus"
)

const sentinelEntity = "test_sentinel"

// subscribeCounting registers an Updated counter on b for assertions
// about how many Updated events a sequence of writes produced.
func subscribeCounting(b *bus.Bus, counter *int32, _ chan struct{}) {
	bus.Subscribe(b, "updated", func(ev bus.Updated) {
		atomic.AddInt32(counter, 1)
	})
}

func loadCount(counter *int32) int32 { return atomic.LoadInt32(counter) }

// drain blocks until every event dispatched before this call has been
// delivered, by pushing a sentinel Added event and waiting for it to
// reach a dedicated subscriber. The bus's single dispatch goroutine
// processes sends in FIFO order, so the sentinel's delivery implies
// everything queued ahead of it already ran.
func drain(b *bus.Bus) {
	reached := make(chan struct{}, 1)
	bus.Subscribe(b, "added", func(ev bus.Added) {
		if ev.Entity == sentinelEntity {
			select {
			case reached <- struct{}{}:
			default:
			}
		}
	})
	b.Dispatch(bus.Added{Entity: sentinelEntity, ID: "sentinel"})
	select {
	case <-reached:
	case <-time.After(2 * time.Second):
	}
}
