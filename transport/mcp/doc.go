// Package mcp exposes a read-only MCP tool surface over the room server.
//
// The package is a thin client that proxies every tool call to the REST
// API rather than touching the registry directly, so the MCP surface can
// target a local or remote server interchangeably.
//
// Tools:
//   - list_rooms: list live rooms with player and connection counts
//   - get_room: fetch one room's full public snapshot by code
//
// Playing happens over websocket connections, which carry role and
// membership; the MCP surface only observes.
package mcp
