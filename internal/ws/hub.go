// Package ws implements the WebSocket fan-out hub: a single actor
// goroutine owning session/room membership, heartbeat eviction, and
// broadcast, built on gorilla/websocket's hub/read-pump/write-pump
// idiom.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	mainRoom      = "main"
	pongWait      = 60 * time.Second
	pingPeriod    = 54 * time.Second
	writeWait     = 10 * time.Second
	outboundDepth = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Session is one connected WebSocket client.
type Session struct {
	id       string
	room     string
	conn     *websocket.Conn
	outbound chan []byte
	hub      *Hub
}

type registration struct {
	session *Session
}

type unregistration struct {
	id string
}

type broadcastRequest struct {
	room     string
	payload  []byte
	exceptID string
}

type inboundText struct {
	id   string
	text string
}

// Hub is the fan-out actor: a single goroutine owning all session/room
// state, reachable only through its channels so no mutex is needed on
// the maps themselves.
type Hub struct {
	sessions map[string]*Session
	rooms    map[string]map[string]bool

	register   chan registration
	unregister chan unregistration
	broadcast  chan broadcastRequest
	inbound    chan inboundText
	stop       chan struct{}
}

// New constructs a Hub. Call Run in its own goroutine to start the actor.
func New() *Hub {
	return &Hub{
		sessions:   make(map[string]*Session),
		rooms:      make(map[string]map[string]bool),
		register:   make(chan registration),
		unregister: make(chan unregistration),
		broadcast:  make(chan broadcastRequest, 256),
		inbound:    make(chan inboundText, 64),
		stop:       make(chan struct{}),
	}
}

// Run drives the hub's actor loop until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			for _, s := range h.sessions {
				close(s.outbound)
			}
			return
		case r := <-h.register:
			h.sessions[r.session.id] = r.session
			h.addToRoom(r.session.id, r.session.room)
		case u := <-h.unregister:
			h.removeSession(u.id)
		case b := <-h.broadcast:
			h.doBroadcast(b)
		case in := <-h.inbound:
			h.handleInbound(in)
		}
	}
}

// Stop terminates the actor loop and closes every session's outbound
// channel, which in turn drains and closes the underlying connections.
func (h *Hub) Stop() { close(h.stop) }

func (h *Hub) addToRoom(id, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]bool)
	}
	h.rooms[room][id] = true
}

func (h *Hub) removeFromRoom(id, room string) {
	if set, ok := h.rooms[room]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) removeSession(id string) {
	s, ok := h.sessions[id]
	if !ok {
		return
	}
	h.removeFromRoom(id, s.room)
	delete(h.sessions, id)
	close(s.outbound)
}

func (h *Hub) doBroadcast(b broadcastRequest) {
	for id := range h.rooms[b.room] {
		if id == b.exceptID {
			continue
		}
		s, ok := h.sessions[id]
		if !ok {
			continue
		}
		select {
		case s.outbound <- b.payload:
		default:
			// Session's outbound buffer is full: it's too slow to keep
			// up, evict it rather than block the hub loop. Already on
			// the actor goroutine, so remove directly.
			h.removeSession(id)
		}
	}
}

// Broadcast JSON-marshals payload and pushes it to every session in room
// except exceptID (pass "" to exclude no one). This is the entry point
// the progress bridge and catalog event handlers call from outside
// the hub's own goroutine.
func (h *Hub) Broadcast(room string, payload any, exceptID string) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("ws: failed to marshal broadcast payload", "error", err)
		return
	}
	select {
	case h.broadcast <- broadcastRequest{room: room, payload: data, exceptID: exceptID}:
	case <-h.stop:
	}
}

// BroadcastMain is a shorthand for Broadcast(mainRoom, payload, ""):
// every server-originated event lands in the "main" room.
func (h *Hub) BroadcastMain(payload any) {
	h.Broadcast(mainRoom, payload, "")
}

// Upgrade promotes an HTTP request to a WebSocket session joined to the
// main room, and starts its read/write pumps. Callers are expected to
// have already gated this behind the WS_ENABLED config check (406 when
// disabled).
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	s := &Session{
		id:       uuid.NewString(),
		room:     mainRoom,
		conn:     conn,
		outbound: make(chan []byte, outboundDepth),
		hub:      h,
	}
	select {
	case h.register <- registration{session: s}:
	case <-h.stop:
		conn.Close()
		return nil
	}
	go s.writePump()
	go s.readPump()
	return nil
}

func (s *Session) readPump() {
	defer func() {
		select {
		case s.hub.unregister <- unregistration{id: s.id}:
		case <-s.hub.stop:
		}
		s.conn.Close()
	}()
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case s.hub.inbound <- inboundText{id: s.id, text: string(msg)}:
		case <-s.hub.stop:
			return
		}
	}
}

// handleInbound implements the tiny verb/argument grammar from clients:
// /list, /join <room>, /name <name>; anything else is broadcast as plain
// text into the session's current room. Runs on the actor goroutine, the
// only place session/room state may be read.
func (h *Hub) handleInbound(in inboundText) {
	s, ok := h.sessions[in.id]
	if !ok {
		return
	}
	text := strings.TrimSpace(in.text)
	switch {
	case text == "/list":
		h.sendTo(s, map[string]any{"rooms": h.roomNames()})
	case strings.HasPrefix(text, "/join "):
		room := strings.TrimSpace(strings.TrimPrefix(text, "/join "))
		if room != "" {
			h.removeFromRoom(s.id, s.room)
			s.room = room
			h.addToRoom(s.id, room)
		}
	case strings.HasPrefix(text, "/name "):
		// Accepted and ignored (no reply is sent); display-name bookkeeping is left to
		// the client since the hub has no Client-entity concept of its
		// own (that's the catalog's job, resolved via HTTP auth instead).
	default:
		data, err := json.Marshal(map[string]any{"message": text})
		if err != nil {
			return
		}
		h.doBroadcast(broadcastRequest{room: s.room, payload: data, exceptID: s.id})
	}
}

// sendTo pushes a payload to one session, evicting it if its buffer is
// full, same as doBroadcast's slow-consumer policy.
func (h *Hub) sendTo(s *Session, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	select {
	case s.outbound <- data:
	default:
		h.removeSession(s.id)
	}
}

func (h *Hub) roomNames() []string {
	names := make([]string, 0, len(h.rooms))
	for r := range h.rooms {
		names = append(names, r)
	}
	return names
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.outbound:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
