package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubscribeDeliversInRegistrationOrder(t *testing.T) {
	b := New(16)
	defer b.Close(context.Background())

	var mu sync.Mutex
	var order []string

	Subscribe(b, "added", func(ev Added) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	Subscribe(b, "added", func(ev Added) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	})

	done := make(chan struct{})
	Subscribe(b, "added", func(ev Added) { close(done) })

	b.Dispatch(Added{Entity: "track", ID: "t1"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first", "second"}, order, "handlers for one event type must fire in registration order")
}

func TestDispatchOnlyInvokesMatchingKindAndType(t *testing.T) {
	b := New(16)
	defer b.Close(context.Background())

	addedCh := make(chan Added, 1)
	deletedCh := make(chan Deleted, 1)
	Subscribe(b, "added", func(ev Added) { addedCh <- ev })
	Subscribe(b, "deleted", func(ev Deleted) { deletedCh <- ev })

	b.Dispatch(Added{Entity: "album", ID: "a1"})
	b.Dispatch(Deleted{Entity: "album", ID: "a1"})

	select {
	case ev := <-addedCh:
		require.Equal(t, "a1", ev.ID)
	case <-time.After(time.Second):
		t.Fatal("added subscriber never fired")
	}
	select {
	case ev := <-deletedCh:
		require.Equal(t, "a1", ev.ID)
	case <-time.After(time.Second):
		t.Fatal("deleted subscriber never fired")
	}
}

// TestHandlerPanicDoesNotAffectOtherSubscribers covers the bus's
// at-most-once, best-effort delivery contract: a subscriber panic must
// not prevent other subscribers (or later events) from being delivered.
func TestHandlerPanicDoesNotAffectOtherSubscribers(t *testing.T) {
	b := New(16)
	defer b.Close(context.Background())

	Subscribe(b, "added", func(ev Added) { panic("boom") })

	survived := make(chan struct{}, 1)
	Subscribe(b, "added", func(ev Added) { survived <- struct{}{} })

	b.Dispatch(Added{Entity: "track", ID: "t1"})

	select {
	case <-survived:
	case <-time.After(time.Second):
		t.Fatal("a panicking handler must not block delivery to other subscribers")
	}

	// The dispatcher goroutine itself must also still be alive afterward.
	again := make(chan struct{}, 1)
	Subscribe(b, "updated", func(ev Updated) { again <- struct{}{} })
	b.Dispatch(Updated{Entity: "track", ID: "t1"})
	select {
	case <-again:
	case <-time.After(time.Second):
		t.Fatal("dispatcher goroutine must survive a handler panic")
	}
}

func TestCloseDrainsQueuedEvents(t *testing.T) {
	b := New(4)
	received := make(chan string, 8)
	Subscribe(b, "added", func(ev Added) { received <- ev.ID })

	for i := 0; i < 4; i++ {
		b.Dispatch(Added{Entity: "track", ID: string(rune('a' + i))})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b.Close(ctx)

	close(received)
	var got []string
	for id := range received {
		got = append(got, id)
	}
	require.Len(t, got, 4, "Close must drain every already-queued event")
}
