package gateway

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/varkas/mannchess-server/internal/obslog"
	"github.com/varkas/mannchess-server/internal/room"
	"github.com/varkas/mannchess-server/internal/wire"
)

// Hub owns every live room and the websocket endpoint that feeds them.
// Rooms are created on the first connection naming their id and
// disposed once the last connection drops.
type Hub struct {
	roomOpts room.Options

	mu     sync.Mutex
	rooms  map[string]*roomHandle
	closed bool
}

func NewHub(roomOpts room.Options) *Hub {
	return &Hub{
		roomOpts: roomOpts,
		rooms:    make(map[string]*roomHandle),
	}
}

// roomHandle pairs a room with its connected clients and acts as the
// room's broadcaster.
type roomHandle struct {
	id   string
	room *room.Room

	mu      sync.RWMutex
	clients map[string]*client
}

func newRoomHandle(id string) *roomHandle {
	return &roomHandle{id: id, clients: make(map[string]*client)}
}

// Send implements room.Broadcaster.
func (rh *roomHandle) Send(sessionID string, ev wire.Event) {
	rh.mu.RLock()
	c := rh.clients[sessionID]
	rh.mu.RUnlock()
	if c != nil {
		c.enqueue(ev)
	}
}

// Broadcast implements room.Broadcaster.
func (rh *roomHandle) Broadcast(ev wire.Event) {
	rh.mu.RLock()
	defer rh.mu.RUnlock()
	for _, c := range rh.clients {
		c.enqueue(ev)
	}
}

func (rh *roomHandle) addClient(c *client) {
	rh.mu.Lock()
	rh.clients[c.sessionID] = c
	rh.mu.Unlock()
}

func (rh *roomHandle) removeClient(sessionID string) int {
	rh.mu.Lock()
	delete(rh.clients, sessionID)
	n := len(rh.clients)
	rh.mu.Unlock()
	return n
}

func (rh *roomHandle) clientCount() int {
	rh.mu.RLock()
	defer rh.mu.RUnlock()
	return len(rh.clients)
}

// Handler returns the HTTP surface: the websocket endpoint plus a
// liveness probe.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", h.serveWS)
	return mux
}

func (h *Hub) serveWS(w http.ResponseWriter, req *http.Request) {
	roomID := strings.TrimSpace(req.URL.Query().Get("room"))
	if roomID == "" {
		http.Error(w, "room required", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.URL.Query().Get("name"))

	conn, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("ws_accept_fail", zap.String("room", roomID), zap.Error(err))
		return
	}

	sessionID := uuid.NewString()
	c := newClient(sessionID, conn)
	rh := h.attach(roomID, c)
	if rh == nil {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	go c.writePump()

	rh.room.Join(sessionID, name)
	obslog.L().Info("ws_connect",
		zap.String("room", roomID),
		zap.String("session", sessionID))

	for {
		var env wire.Envelope
		if err := wsjson.Read(req.Context(), conn, &env); err != nil {
			break
		}
		rh.room.HandleMessage(sessionID, env)
	}

	rh.room.Leave(sessionID)
	c.close(websocket.StatusNormalClosure, "")
	h.detach(roomID, rh, sessionID)
	obslog.L().Info("ws_disconnect",
		zap.String("room", roomID),
		zap.String("session", sessionID))
}

// attach returns the handle for roomID, creating the room when it does
// not exist yet, and registers the client under the hub lock so dispose
// never races a fresh join.
func (h *Hub) attach(roomID string, c *client) *roomHandle {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	rh, ok := h.rooms[roomID]
	if !ok {
		rh = newRoomHandle(roomID)
		rh.room = room.New(roomID, rh, h.roomOpts)
		h.rooms[roomID] = rh
	}
	rh.addClient(c)
	return rh
}

func (h *Hub) detach(roomID string, rh *roomHandle, sessionID string) {
	h.mu.Lock()
	remaining := rh.removeClient(sessionID)
	if remaining > 0 {
		h.mu.Unlock()
		return
	}
	if cur, ok := h.rooms[roomID]; ok && cur == rh {
		delete(h.rooms, roomID)
	}
	h.mu.Unlock()
	rh.room.Dispose()
}

// Close rejects new connections and disposes every live room.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	handles := make([]*roomHandle, 0, len(h.rooms))
	for id, rh := range h.rooms {
		handles = append(handles, rh)
		delete(h.rooms, id)
	}
	h.mu.Unlock()

	for _, rh := range handles {
		rh.mu.Lock()
		for id, c := range rh.clients {
			c.close(websocket.StatusGoingAway, "server shutting down")
			delete(rh.clients, id)
		}
		rh.mu.Unlock()
		rh.room.Dispose()
	}
}

// RoomCount reports how many rooms are live.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
