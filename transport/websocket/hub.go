package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"oxorooms/game/room"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Outbound frames buffered per connection before broadcasts skip it.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Room codes are the only access control; origins are open.
		return true
	},
}

// Hub routes protocol messages into rooms and fans results back out to
// every connection attached to the same room.
type Hub struct {
	registry *room.Registry

	mu      sync.RWMutex
	members map[string]map[*Client]bool // room code -> attached clients
}

// NewHub creates a hub over the given room registry.
func NewHub(registry *room.Registry) *Hub {
	return &Hub{
		registry: registry,
		members:  make(map[string]map[*Client]bool),
	}
}

// Client is one websocket connection together with its room binding. The
// room and role fields are owned by the connection's read goroutine; the
// write goroutine only drains the send channel.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	room *room.Room
	role room.Role
}

// ServeWS upgrades an HTTP request to a websocket connection and starts
// its read and write goroutines. The server greets every connection with
// a hello frame before anything else.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	client.enqueue(helloMessage())

	go client.writePump()
	go client.readPump()
}

// attach adds a client to a room's broadcast set.
func (h *Hub) attach(code string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.members[code] == nil {
		h.members[code] = make(map[*Client]bool)
	}
	h.members[code][c] = true
}

// detach removes a client from a room's broadcast set.
func (h *Hub) detach(code string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.members[code], c)
	if len(h.members[code]) == 0 {
		delete(h.members, code)
	}
}

// broadcast sends a frame to every client attached to the room. Delivery
// is fire-and-forget: a client whose buffer is full misses the frame.
func (h *Hub) broadcast(code string, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal broadcast frame: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.members[code] {
		select {
		case client.send <- data:
		default:
		}
	}
}

// broadcastSnapshot sends a freshly recomputed room snapshot under the
// given frame type (state or presence).
func (h *Hub) broadcastSnapshot(rm *room.Room, typ string) {
	h.broadcast(rm.Code(), snapshotMessage(typ, rm.Snapshot()))
}

// enqueue queues a frame for this client only.
func (c *Client) enqueue(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal frame: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// readPump reads frames from the peer and dispatches them one at a time.
// When the connection drops, abrupt or not, the cleanup is identical to an
// explicit leave.
func (c *Client) readPump() {
	defer func() {
		c.leaveCurrentRoom()
		c.conn.Close()
		close(c.send)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			break
		}
		c.hub.dispatch(c, data)
	}
}

// writePump drains the send channel to the peer and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// leaveCurrentRoom detaches the client from its room, frees its player
// slot, and either announces the departure to the remaining members or
// destroys the now-empty room. No-op when the client is unbound.
func (c *Client) leaveCurrentRoom() {
	rm := c.room
	if rm == nil {
		return
	}
	c.room = nil
	c.role = room.RoleNone

	c.hub.detach(rm.Code(), c)
	if empty := rm.Leave(c.id); empty {
		c.hub.registry.Release(rm)
		return
	}
	c.hub.broadcastSnapshot(rm, TypePresence)
}
