package websocket

import (
	"encoding/json"

	"oxorooms/game/room"
)

// dispatch decodes one inbound frame and runs the matching handler.
// Unparseable frames and unknown types are noise, not faults: they are
// dropped without a response.
func (h *Hub) dispatch(c *Client, data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	switch msg.Type {
	case TypeCreateRoom:
		h.handleCreateRoom(c)
	case TypeJoinRoom:
		h.handleJoinRoom(c, msg.RoomCode)
	case TypeMove:
		h.handleMove(c, msg.Index)
	case TypeRestart:
		h.handleRestart(c)
	case TypeChat:
		h.handleChat(c, msg.Text)
	case TypeLeave:
		c.leaveCurrentRoom()
	default:
	}
}

// handleCreateRoom creates a fresh room and moves the caller into it. A
// connection holds at most one membership, so any previous binding is left
// first (announcing the departure to that room).
func (h *Hub) handleCreateRoom(c *Client) {
	c.leaveCurrentRoom()

	rm := h.registry.Create()
	h.bindToRoom(c, rm, TypeRoomCreated)
}

// handleJoinRoom looks up the normalized code and moves the caller into
// the room. An unknown code earns the caller an error frame; nothing else
// changes.
func (h *Hub) handleJoinRoom(c *Client, code string) {
	rm, err := h.registry.Find(room.NormalizeCode(code))
	if err != nil {
		c.enqueue(errorMessage("room not found"))
		return
	}

	c.leaveCurrentRoom()
	h.bindToRoom(c, rm, TypeRoomJoined)
}

// bindToRoom joins the client into the room, replies with its identity and
// role, sends it the current snapshot, and announces the membership change
// to the whole room.
func (h *Hub) bindToRoom(c *Client, rm *room.Room, replyType string) {
	role := rm.Join(c.id)
	c.room = rm
	c.role = role
	h.attach(rm.Code(), c)

	c.enqueue(roomReply(replyType, rm.Code(), role))
	c.enqueue(snapshotMessage(TypeState, rm.Snapshot()))
	h.broadcastSnapshot(rm, TypePresence)
}

// handleMove applies a move for the caller. Moves the room rejects (wrong
// turn, occupied cell, bad index, game over, spectator) change nothing and
// produce no broadcast.
func (h *Hub) handleMove(c *Client, idx *int) {
	if c.room == nil {
		c.enqueue(errorMessage("not in a room"))
		return
	}
	if idx == nil {
		return
	}
	if c.room.ApplyMove(c.id, *idx) {
		h.broadcastSnapshot(c.room, TypeState)
	}
}

// handleRestart resets the caller's room if the caller holds a player
// slot. Spectator restarts change nothing and produce no broadcast.
func (h *Hub) handleRestart(c *Client) {
	if c.room == nil {
		c.enqueue(errorMessage("not in a room"))
		return
	}
	if c.room.Restart(c.id) {
		h.broadcastSnapshot(c.room, TypeState)
	}
}

// handleChat posts a chat entry and broadcasts just that entry, not a full
// snapshot.
func (h *Hub) handleChat(c *Client, text string) {
	if c.room == nil {
		c.enqueue(errorMessage("not in a room"))
		return
	}
	if entry, ok := c.room.PostChat(c.id, text); ok {
		h.broadcast(c.room.Code(), chatNotification(entry))
	}
}
