// Package websocket provides the realtime transport for the room server.
//
// The websocket package implements:
//   - Connection lifecycle management with ping/pong keepalive
//   - The wire protocol between server and clients
//   - Per-message protocol dispatch into room operations
//   - Snapshot and chat fan-out to every connection in a room
//
// Architecture:
//
// The package uses a hub-and-spoke model. The Hub owns the room registry
// and the mapping from room code to attached connections. Each connection
// is a Client with a dedicated read goroutine (which also runs dispatch,
// so one connection's messages are processed strictly in order) and a
// write goroutine draining a buffered send channel.
//
// Message Protocol:
//
// Every frame is a JSON object with a required "type" field.
//
//   - Client to server: create_room, join_room, move, restart, chat, leave
//   - Server to client: hello, room_created, room_joined, state, presence,
//     chat, error
//
// A full snapshot is broadcast as "state" after game-affecting events and
// as "presence" (same payload shape) on membership changes. Chat entries
// are sent incrementally rather than re-broadcasting the whole snapshot.
//
// Error Discipline:
//
// Unparseable frames and unknown types are dropped silently. Acting
// without a room binding, or joining a code that does not exist, earns the
// sender an "error" frame and nothing else. Invalid in-room game actions
// (wrong turn, occupied cell, spectator restart) are silent no-ops: they
// come from stale client UI state, not hostile input.
//
// Broadcasting is fire-and-forget: a connection whose send buffer is full
// at broadcast time simply misses that frame. There is no retry, queueing,
// or backpressure.
package websocket
