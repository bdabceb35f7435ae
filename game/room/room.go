package room

import (
	"strings"
	"sync"
	"time"

	"oxorooms/game/engine"
)

// Role is a connection's capacity within a room.
type Role string

const (
	RoleX         Role = "X"
	RoleO         Role = "O"
	RoleSpectator Role = "SPECTATOR"
	RoleNone      Role = ""
)

// Mark returns the board mark a role plays with, or MarkEmpty for
// spectators and unbound connections.
func (r Role) Mark() engine.Mark {
	switch r {
	case RoleX:
		return engine.MarkX
	case RoleO:
		return engine.MarkO
	}
	return engine.MarkEmpty
}

// IsPlayer reports whether the role holds one of the two player slots.
func (r Role) IsPlayer() bool {
	return r == RoleX || r == RoleO
}

const (
	// maxChatMessages bounds a room's chat history; oldest entries drop first.
	maxChatMessages = 100

	// maxChatTextLen is the per-message character limit after trimming.
	maxChatTextLen = 200
)

// ChatMessage is one chat entry, tagged with the poster's role at post time.
type ChatMessage struct {
	Player Role      `json:"player"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
}

// Snapshot is the complete public view of a room, recomputed per call.
// Field names match the wire protocol.
type Snapshot struct {
	Code          string        `json:"code"`
	Board         engine.Board  `json:"board"`
	CurrentPlayer engine.Mark   `json:"currentPlayer"`
	IsGameOver    bool          `json:"isGameOver"`
	WinnerLine    []int         `json:"winnerLine"`
	IsDraw        bool          `json:"isDraw"`
	PlayerCount   int           `json:"playerCount"`
	Chat          []ChatMessage `json:"chat"`
}

// Room is one isolated game+chat session. All exported methods are safe for
// concurrent use; a single mutex serializes every mutation and snapshot of
// one room.
type Room struct {
	code      string
	createdAt time.Time

	mu      sync.Mutex
	conns   map[string]struct{}
	players map[Role]string // RoleX / RoleO -> connection id
	board   engine.Board
	current engine.Mark
	over    bool
	chat    []ChatMessage
}

func newRoom(code string) *Room {
	return &Room{
		code:      code,
		createdAt: time.Now(),
		conns:     make(map[string]struct{}),
		players:   make(map[Role]string),
		current:   engine.MarkX,
	}
}

// Code returns the room's short code.
func (r *Room) Code() string {
	return r.code
}

// CreatedAt returns the room's creation time. Informational only.
func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

// Join adds a connection and assigns its role: the first free player slot
// in X, O order, or spectator when both slots are held. Roles are assigned
// per join and never reserved across reconnects.
func (r *Room) Join(connID string) Role {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[connID] = struct{}{}
	if r.players[RoleX] == "" {
		r.players[RoleX] = connID
		return RoleX
	}
	if r.players[RoleO] == "" {
		r.players[RoleO] = connID
		return RoleO
	}
	return RoleSpectator
}

// Leave removes a connection, freeing its player slot if it held one, and
// reports whether the room is now empty. The caller releases empty rooms
// from the registry.
func (r *Room) Leave(connID string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, connID)
	if r.players[RoleX] == connID {
		delete(r.players, RoleX)
	}
	if r.players[RoleO] == connID {
		delete(r.players, RoleO)
	}
	return len(r.conns) == 0
}

// RoleOf returns the connection's role in this room, or RoleNone when the
// connection is not a member.
func (r *Room) RoleOf(connID string) Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roleOf(connID)
}

func (r *Room) roleOf(connID string) Role {
	if r.players[RoleX] == connID {
		return RoleX
	}
	if r.players[RoleO] == connID {
		return RoleO
	}
	if _, ok := r.conns[connID]; ok {
		return RoleSpectator
	}
	return RoleNone
}

// ApplyMove writes the connection's mark into the cell at idx and reports
// whether the room changed. Every precondition violation (game over, not a
// player, wrong turn, bad index, occupied cell) is ignored without error:
// stale client state is expected input, not a fault.
func (r *Room) ApplyMove(connID string, idx int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.over {
		return false
	}
	role := r.roleOf(connID)
	if !role.IsPlayer() || role.Mark() != r.current {
		return false
	}
	if !engine.ValidIndex(idx) || r.board[idx] != engine.MarkEmpty {
		return false
	}

	r.board[idx] = role.Mark()
	if engine.IsOver(r.board) {
		// currentPlayer is informational once the game ends; leave it.
		r.over = true
	} else {
		r.current = r.current.Other()
	}
	return true
}

// Restart clears the board and hands the turn to X. Only players may
// restart; role assignments and chat history survive. Reports whether the
// room changed.
func (r *Room) Restart(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.roleOf(connID).IsPlayer() {
		return false
	}
	r.board = engine.Board{}
	r.current = engine.MarkX
	r.over = false
	return true
}

// PostChat appends a chat entry tagged with the poster's role. Text is
// trimmed and truncated to maxChatTextLen characters; empty text is
// rejected. Reports the stored message and whether it was accepted.
func (r *Room) PostChat(connID, text string) (ChatMessage, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, false
	}
	if runes := []rune(text); len(runes) > maxChatTextLen {
		text = string(runes[:maxChatTextLen])
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	role := r.roleOf(connID)
	if !role.IsPlayer() {
		role = RoleSpectator
	}

	msg := ChatMessage{Player: role, Text: text, Time: time.Now()}
	r.chat = append(r.chat, msg)
	if len(r.chat) > maxChatMessages {
		r.chat = r.chat[len(r.chat)-maxChatMessages:]
	}
	return msg, true
}

// ConnCount returns the number of attached connections.
func (r *Room) ConnCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Snapshot recomputes the room's public view from the raw board. Nothing is
// cached: eight line checks per broadcast is cheaper than carrying
// invalidation logic for derived fields.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Code:          r.code,
		Board:         r.board,
		CurrentPlayer: r.current,
		IsGameOver:    r.over,
		IsDraw:        engine.IsDraw(r.board),
		Chat:          make([]ChatMessage, len(r.chat)),
	}
	copy(snap.Chat, r.chat)

	if line, ok := engine.WinningLine(r.board); ok {
		snap.WinnerLine = []int{line[0], line[1], line[2]}
	}
	if r.players[RoleX] != "" {
		snap.PlayerCount++
	}
	if r.players[RoleO] != "" {
		snap.PlayerCount++
	}
	return snap
}
