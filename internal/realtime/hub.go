package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/keys"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/logging"
)

const writeTimeout = 5 * time.Second

// Envelope is the wire frame for every server-to-client event.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// clientMessage is what connected clients may send: room membership changes.
type clientMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type client struct {
	conn *websocket.Conn
}

// Hub tracks one websocket connection per actor and fans events out to
// rooms. A reconnect replaces the actor's previous connection.
type Hub struct {
	mu    sync.Mutex
	conns map[string]*client
	rooms map[string]map[string]bool
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*client),
		rooms: make(map[string]map[string]bool),
	}
}

// Handle upgrades the request and serves the connection until the client
// goes away. It blocks for the lifetime of the connection.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request, actorID string) {
	actorID = keys.ActorKey(actorID)
	if actorID == "" {
		http.Error(w, "actor required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		logging.Warn("websocket accept failed", err, nil)
		return
	}
	defer conn.CloseNow()

	h.register(actorID, conn)
	defer h.unregister(actorID, conn)
	logging.Info("websocket connected", logging.Fields{"actor": actorID})

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "join_room":
			h.JoinRoom(msg.RoomID, actorID)
		case "leave_room":
			h.LeaveRoom(msg.RoomID, actorID)
		}
	}
}

func (h *Hub) register(actorID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.conns[actorID]; ok {
		prev.conn.Close(websocket.StatusNormalClosure, "replaced by new connection")
	}
	h.conns[actorID] = &client{conn: conn}
}

func (h *Hub) unregister(actorID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Only drop the entry if it still points at this connection; a
	// reconnect may already have replaced it.
	if c, ok := h.conns[actorID]; ok && c.conn == conn {
		delete(h.conns, actorID)
		for roomID, members := range h.rooms {
			delete(members, actorID)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

// JoinRoom subscribes the actor to a room's events.
func (h *Hub) JoinRoom(roomID, actorID string) {
	roomID = keys.ActorKey(roomID)
	actorID = keys.ActorKey(actorID)
	if roomID == "" || actorID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]bool)
	}
	h.rooms[roomID][actorID] = true
}

// LeaveRoom unsubscribes the actor from a room.
func (h *Hub) LeaveRoom(roomID, actorID string) {
	roomID = keys.ActorKey(roomID)
	actorID = keys.ActorKey(actorID)
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[roomID]; ok {
		delete(members, actorID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// ToRoom sends an event to every actor subscribed to the room. Sends are
// best effort: a dead connection drops its frame and is closed.
func (h *Hub) ToRoom(roomID, event string, payload interface{}) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.rooms[roomID]))
	for actorID := range h.rooms[roomID] {
		if c, ok := h.conns[actorID]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()
	h.broadcast(targets, event, payload)
}

// ToActor sends an event to one actor's connection, if any.
func (h *Hub) ToActor(actorID, event string, payload interface{}) {
	actorID = keys.ActorKey(actorID)
	h.mu.Lock()
	c, ok := h.conns[actorID]
	h.mu.Unlock()
	if !ok {
		return
	}
	h.broadcast([]*client{c}, event, payload)
}

func (h *Hub) broadcast(targets []*client, event string, payload interface{}) {
	if len(targets) == 0 {
		return
	}
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		logging.Warn("failed to marshal event", err, logging.Fields{"event": event})
		return
	}
	for _, c := range targets {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
			c.conn.Close(websocket.StatusAbnormalClosure, "write failed")
		}
		cancel()
	}
}
