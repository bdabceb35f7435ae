// Package client implements the session side of the room protocol:
// connection management, automatic reconnection, and room resumption.
//
// The client package implements:
//   - A websocket session holding the current room, role, and snapshot
//   - A local chat mirror, rebuilt from snapshots and appended
//     incrementally from chat frames
//   - Automatic reconnect after transport loss (single timer, fixed delay)
//   - Best-effort rejoin of the last-used room code on reconnect
//
// Resumption:
//
// Only the room code is remembered, through a CodeStore supplied by the
// embedding application. The role is renegotiated by the join protocol on
// every connect and may differ from the role held before a disconnect: a
// returning client competes for whichever player slot is free. A failed
// rejoin surfaces as an error callback and leaves the remembered code in
// place so a later manual attempt can succeed.
//
// The session never blocks its caller: all network interaction runs in
// the read goroutine and results arrive through callbacks. The server is
// the sole source of truth; CanMove only gates input before sending.
package client
