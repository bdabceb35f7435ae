package websocket

import (
	"encoding/json"

	"oxorooms/game/room"
)

// Client to server message types.
const (
	TypeCreateRoom = "create_room"
	TypeJoinRoom   = "join_room"
	TypeMove       = "move"
	TypeRestart    = "restart"
	TypeChat       = "chat"
	TypeLeave      = "leave"
)

// Server to client message types. Chat frames reuse TypeChat.
const (
	TypeHello       = "hello"
	TypeRoomCreated = "room_created"
	TypeRoomJoined  = "room_joined"
	TypeState       = "state"
	TypePresence    = "presence"
	TypeError       = "error"
)

// ClientMessage is the envelope for every client to server frame.
type ClientMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode,omitempty"`
	Index    *int   `json:"index,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ServerMessage is the envelope for every server to client frame. The
// Message field carries a chat entry for "chat" frames and an error string
// for "error" frames; it stays raw so a single envelope decodes every
// frame type.
type ServerMessage struct {
	Type     string          `json:"type"`
	RoomCode string          `json:"roomCode,omitempty"`
	Role     room.Role       `json:"role,omitempty"`
	State    *room.Snapshot  `json:"state,omitempty"`
	Message  json.RawMessage `json:"message,omitempty"`
}

// ChatEntry decodes the Message field of a "chat" frame.
func (m *ServerMessage) ChatEntry() (room.ChatMessage, error) {
	var entry room.ChatMessage
	err := json.Unmarshal(m.Message, &entry)
	return entry, err
}

// ErrorText decodes the Message field of an "error" frame. It returns the
// empty string when the field does not hold a string.
func (m *ServerMessage) ErrorText() string {
	var text string
	if err := json.Unmarshal(m.Message, &text); err != nil {
		return ""
	}
	return text
}

func mustRaw(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// All wire types marshal without error.
		panic(err)
	}
	return data
}

func helloMessage() ServerMessage {
	return ServerMessage{Type: TypeHello}
}

// roomReply builds the room_created / room_joined reply to the caller.
func roomReply(typ, code string, role room.Role) ServerMessage {
	return ServerMessage{Type: typ, RoomCode: code, Role: role}
}

func snapshotMessage(typ string, snap room.Snapshot) ServerMessage {
	return ServerMessage{Type: typ, State: &snap}
}

func chatNotification(entry room.ChatMessage) ServerMessage {
	return ServerMessage{Type: TypeChat, Message: mustRaw(entry)}
}

func errorMessage(text string) ServerMessage {
	return ServerMessage{Type: TypeError, Message: mustRaw(text)}
}
