package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"oxorooms/api"
	"oxorooms/game/room"
)

// Client is a thin MCP client that proxies to the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools.
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"OXO Rooms",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`OXO Rooms - MCP Interface

Read-only view over a realtime room-based tic-tac-toe server.

AVAILABLE TOOLS:
- list_rooms: List all live rooms with player/connection counts
- get_room: Get one room's full snapshot (board, turn, chat) by code

Rooms are identified by 5-character codes. Playing requires a websocket
connection; these tools only observe.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools.
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all live game rooms",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_room",
		Description: "Get the full public snapshot of a room by its 5-character code",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_code": map[string]interface{}{
					"type":        "string",
					"description": "Room code to look up",
				},
			},
			Required: []string{"room_code"},
		},
	}, c.handleGetRoom)
}

// GetMCPServer returns the underlying MCP server for serving.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall performs a GET against the REST API and decodes the response.
func (c *Client) apiCall(path string, result interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

// Tool handlers

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int            `json:"count"`
		Rooms []api.RoomInfo `json:"rooms"`
	}

	if err := c.apiCall("/api/rooms", &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Live Rooms (%d):\n\n", response.Count)
	for _, rm := range response.Rooms {
		result += fmt.Sprintf("- %s (players: %d/2, connections: %d, created: %s)\n",
			rm.Code, rm.PlayerCount, rm.Connections, rm.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	code, _ := args["room_code"].(string)

	var snap room.Snapshot
	if err := c.apiCall("/api/rooms/"+room.NormalizeCode(code), &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

// formatSnapshot renders a snapshot as readable text for tool output.
func formatSnapshot(snap *room.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Room %s\n", snap.Code)
	fmt.Fprintf(&b, "Players: %d/2\n\n", snap.PlayerCount)

	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			cell := string(snap.Board[row*3+col])
			if cell == "" {
				cell = "."
			}
			b.WriteString(cell)
			if col < 2 {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case snap.IsDraw:
		b.WriteString("Result: draw\n")
	case snap.WinnerLine != nil:
		fmt.Fprintf(&b, "Result: won on line %v\n", snap.WinnerLine)
	default:
		fmt.Fprintf(&b, "Turn: %s\n", snap.CurrentPlayer)
	}

	fmt.Fprintf(&b, "Chat entries: %d\n", len(snap.Chat))
	return b.String()
}
