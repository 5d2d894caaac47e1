package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := New()
	go h.Run()
	t.Cleanup(h.Stop)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.Upgrade(w, r); err != nil {
			t.Errorf("upgrade: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, timeout time.Duration) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err, "read message")
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

// TestBroadcastMainFansOutToEveryMainRoomSession: a BroadcastMain call
// reaches every connected session that hasn't moved out of the main
// room.
func TestBroadcastMainFansOutToEveryMainRoomSession(t *testing.T) {
	h, srv := newTestHub(t)
	a := dial(t, srv)
	b := dial(t, srv)

	// Give the hub actor a moment to process both registrations before
	// broadcasting, since Upgrade's registration send is async relative
	// to the connection handshake completing.
	time.Sleep(50 * time.Millisecond)

	h.BroadcastMain(map[string]any{"kind": "progress", "position": "00:00:05"})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readJSON(t, conn, 2*time.Second)
		require.Equal(t, "progress", msg["kind"])
	}
}

// TestJoinMovesSessionOutOfMainRoom covers the /join verb: a session
// that joins a different room no longer receives main-room broadcasts.
func TestJoinMovesSessionOutOfMainRoom(t *testing.T) {
	h, srv := newTestHub(t)
	mover := dial(t, srv)
	stayer := dial(t, srv)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, mover.WriteMessage(websocket.TextMessage, []byte("/join lounge")))
	time.Sleep(50 * time.Millisecond)

	h.BroadcastMain(map[string]any{"kind": "progress"})

	msg := readJSON(t, stayer, 2*time.Second)
	require.Equal(t, "progress", msg["kind"], "the session that stayed in main should still get the broadcast")

	mover.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := mover.ReadMessage()
	require.Error(t, err, "a session that joined another room must not receive main-room broadcasts")
}

// TestPlainTextExcludesSender covers handleInbound's default case: a
// plain-text message broadcasts to the sender's room excluding the
// sender itself.
func TestPlainTextExcludesSender(t *testing.T) {
	_, srv := newTestHub(t)
	sender := dial(t, srv)
	listener := dial(t, srv)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte("hello room")))

	msg := readJSON(t, listener, 2*time.Second)
	require.Equal(t, "hello room", msg["message"], "listener should receive the plain-text broadcast")

	sender.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := sender.ReadMessage()
	require.Error(t, err, "the sender must be excluded from its own plain-text broadcast")
}

// TestListRespondsWithRoomNames covers the /list verb.
func TestListRespondsWithRoomNames(t *testing.T) {
	_, srv := newTestHub(t)
	conn := dial(t, srv)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("/list")))
	msg := readJSON(t, conn, 2*time.Second)
	rooms, ok := msg["rooms"].([]any)
	require.True(t, ok, "expected a rooms array, got %+v", msg)

	var sawMain bool
	for _, r := range rooms {
		if r == "main" {
			sawMain = true
		}
	}
	require.True(t, sawMain, "room list should include main, got %+v", rooms)
}
