// Package api provides the HTTP surface of the room server.
//
// The api package implements:
//   - Read-only REST endpoints over the room registry
//   - WebSocket upgrade handling at /ws
//
// Endpoints:
//
//   - GET /api/rooms - List live rooms (code, player count, connections)
//   - GET /api/rooms/{code} - Full public snapshot of one room
//   - GET /api/health - Liveness probe
//   - GET /ws - WebSocket upgrade; all room mutation happens here
//
// Room mutation is deliberately absent from REST: roles and membership are
// properties of a live websocket connection, which a plain HTTP request
// does not have.
//
// All endpoints return JSON. Errors are returned as JSON with appropriate
// HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
