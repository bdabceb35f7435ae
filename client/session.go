package client

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"oxorooms/game/room"
	protocol "oxorooms/transport/websocket"
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrClosed       = errors.New("session closed")
	ErrCannotMove   = errors.New("cannot move now")
)

// DefaultReconnectDelay is the pause before the automatic reconnect
// attempt after a transport loss.
const DefaultReconnectDelay = 1500 * time.Millisecond

// Status describes the session's transport state.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Callbacks deliver server events to the embedding application. All
// callbacks are optional and are invoked from the session's read
// goroutine without any internal lock held.
type Callbacks struct {
	// OnState fires when a full snapshot replaces local state (both
	// state and presence frames).
	OnState func(room.Snapshot)

	// OnChat fires for each incremental chat entry.
	OnChat func(room.ChatMessage)

	// OnError fires for error frames addressed to this connection.
	OnError func(string)

	// OnStatus fires on transport status changes.
	OnStatus func(Status)
}

// Session is the client-side state holder: current room and role, the
// last-known snapshot, a chat mirror, and the reconnect machinery.
type Session struct {
	url       string
	store     CodeStore
	callbacks Callbacks

	// ReconnectDelay overrides DefaultReconnectDelay when set before
	// Connect.
	ReconnectDelay time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	roomCode  string
	role      room.Role
	state     *room.Snapshot
	chat      []room.ChatMessage
	reconnect *time.Timer
	closed    bool
}

// NewSession creates a session targeting a ws:// or wss:// URL. Nothing
// connects until Connect is called.
func NewSession(url string, store CodeStore, callbacks Callbacks) *Session {
	return &Session{
		url:            url,
		store:          store,
		callbacks:      callbacks,
		ReconnectDelay: DefaultReconnectDelay,
	}
}

// Connect establishes a fresh transport connection. Any pending scheduled
// reconnect is cancelled and any open connection is torn down first, so at
// most one connection and one reconnect timer exist at a time. On dial
// failure the automatic reconnect is scheduled as if an open connection
// had dropped.
func (s *Session) Connect() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.cancelReconnect()
	old := s.conn
	s.conn = nil
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}

	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		s.mu.Lock()
		s.scheduleReconnect()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.notifyStatus(StatusConnected)
	go s.readLoop(conn)
	return nil
}

// Close tears the session down for good: no further reconnects.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.cancelReconnect()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// CreateRoom asks the server for a fresh room.
func (s *Session) CreateRoom() error {
	return s.send(protocol.ClientMessage{Type: protocol.TypeCreateRoom})
}

// JoinRoom asks to join an existing room by code.
func (s *Session) JoinRoom(code string) error {
	return s.send(protocol.ClientMessage{Type: protocol.TypeJoinRoom, RoomCode: code})
}

// Move sends a move for the cell at idx. The move is gated by CanMove
// before sending; the server re-validates independently either way.
func (s *Session) Move(idx int) error {
	if !s.CanMove() {
		return ErrCannotMove
	}
	return s.send(protocol.ClientMessage{Type: protocol.TypeMove, Index: &idx})
}

// Restart asks to reset the board.
func (s *Session) Restart() error {
	return s.send(protocol.ClientMessage{Type: protocol.TypeRestart})
}

// Chat posts a chat message.
func (s *Session) Chat(text string) error {
	return s.send(protocol.ClientMessage{Type: protocol.TypeChat, Text: text})
}

// Leave exits the current room and forgets the remembered code, so
// auto-resumption does not bring the session back.
func (s *Session) Leave() error {
	err := s.send(protocol.ClientMessage{Type: protocol.TypeLeave})
	s.store.Clear()

	s.mu.Lock()
	s.clearRoomState()
	s.mu.Unlock()
	return err
}

// CanMove reports whether a move request would be legal right now: bound
// to a room, holding a player slot, game in progress, and this role's
// turn. Defense in depth only; the server is the sole source of truth.
func (s *Session) CanMove() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roomCode == "" || !s.role.IsPlayer() {
		return false
	}
	if s.state == nil || s.state.IsGameOver {
		return false
	}
	return s.role.Mark() == s.state.CurrentPlayer
}

// RoomCode returns the current room code, or the empty string.
func (s *Session) RoomCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomCode
}

// Role returns the role held in the current room.
func (s *Session) Role() room.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// Snapshot returns a copy of the last-known snapshot, or nil before the
// first one arrives.
func (s *Session) Snapshot() *room.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	snap := *s.state
	snap.Chat = append([]room.ChatMessage(nil), s.state.Chat...)
	return &snap
}

// Chat history mirror, capped like the server's.
func (s *Session) ChatHistory() []room.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]room.ChatMessage(nil), s.chat...)
}

// Connected reports whether a transport connection is currently open.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *Session) send(msg protocol.ClientMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrNotConnected
	}
	return s.conn.WriteJSON(msg)
}

// readLoop drains server frames until the connection drops, then runs the
// disconnect path.
func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		var msg protocol.ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		s.handleMessage(msg)
	}
	s.handleDisconnect(conn)
}

func (s *Session) handleMessage(msg protocol.ServerMessage) {
	switch msg.Type {
	case protocol.TypeHello:
		s.attemptResumption()

	case protocol.TypeRoomCreated, protocol.TypeRoomJoined:
		s.mu.Lock()
		s.roomCode = msg.RoomCode
		s.role = msg.Role
		s.mu.Unlock()
		s.store.Save(room.NormalizeCode(msg.RoomCode))

	case protocol.TypeState, protocol.TypePresence:
		if msg.State == nil {
			return
		}
		snap := *msg.State
		s.mu.Lock()
		s.state = &snap
		// The mirror re-derives from every full snapshot.
		s.chat = append([]room.ChatMessage(nil), snap.Chat...)
		s.trimChat()
		s.mu.Unlock()
		if s.callbacks.OnState != nil {
			s.callbacks.OnState(snap)
		}

	case protocol.TypeChat:
		entry, err := msg.ChatEntry()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.chat = append(s.chat, entry)
		s.trimChat()
		s.mu.Unlock()
		if s.callbacks.OnChat != nil {
			s.callbacks.OnChat(entry)
		}

	case protocol.TypeError:
		// A failed resumption lands here too; the remembered code stays
		// put for a manual retry.
		if s.callbacks.OnError != nil {
			s.callbacks.OnError(msg.ErrorText())
		}
	}
}

// attemptResumption rejoins the remembered room code, if any, on a fresh
// connection that is not yet bound to a room.
func (s *Session) attemptResumption() {
	s.mu.Lock()
	code := ""
	if s.roomCode == "" {
		code = s.store.Load()
	}
	conn := s.conn
	s.mu.Unlock()

	if code == "" || conn == nil {
		return
	}
	conn.WriteJSON(protocol.ClientMessage{Type: protocol.TypeJoinRoom, RoomCode: code})
}

// handleDisconnect clears local room state and schedules the single
// automatic reconnect, unless a manual Connect already replaced the
// connection or the session is closed.
func (s *Session) handleDisconnect(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn != conn {
		// A manual reconnect already tore this connection down.
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.clearRoomState()
	s.scheduleReconnect()
	s.mu.Unlock()

	s.notifyStatus(StatusDisconnected)
}

// clearRoomState drops room binding, snapshot, and chat mirror. Callers
// hold s.mu.
func (s *Session) clearRoomState() {
	s.roomCode = ""
	s.role = room.RoleNone
	s.state = nil
	s.chat = nil
}

// scheduleReconnect arms the single reconnect timer. Callers hold s.mu.
func (s *Session) scheduleReconnect() {
	if s.closed {
		return
	}
	s.cancelReconnect()
	s.reconnect = time.AfterFunc(s.ReconnectDelay, func() {
		s.Connect()
	})
}

// cancelReconnect stops any pending reconnect timer. Callers hold s.mu.
func (s *Session) cancelReconnect() {
	if s.reconnect != nil {
		s.reconnect.Stop()
		s.reconnect = nil
	}
}

func (s *Session) trimChat() {
	const maxChat = 100
	if len(s.chat) > maxChat {
		s.chat = s.chat[len(s.chat)-maxChat:]
	}
}

func (s *Session) notifyStatus(status Status) {
	if s.callbacks.OnStatus != nil {
		s.callbacks.OnStatus(status)
	}
}
