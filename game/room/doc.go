// Package room provides room lifecycle and game session state for the
// realtime tic-tac-toe server.
//
// The room package implements:
//   - Thread-safe room registry with unique short-code generation
//   - Per-room game state machine (board, turn order, game over)
//   - Role assignment by arrival order (X, then O, then spectators)
//   - Bounded chat history per room
//
// Room Codes:
//
// Rooms use 5-character codes drawn from an alphabet that excludes visually
// confusable characters (0/O, 1/I). The registry generates codes with
// cryptographic randomness and rejects collisions with live rooms; a code
// becomes reusable the moment its room is released.
//
// Concurrency:
//
// The registry serializes code generation and insertion under one lock, so
// two concurrent creations can never collide on a freshly generated code.
// Each Room carries its own mutex: moves, restarts, chat posts, joins,
// leaves, and snapshots on one room are serialized, while different rooms
// never contend with each other.
//
// Connections are identified by opaque string identifiers assigned by the
// transport layer; the room package never touches the transport itself.
package room
