// Package mcp exposes game sessions as Model Context Protocol tools so that
// agents can play over stdio or HTTP.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"merge2048/internal/game"
	"merge2048/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const instructions = `2048 - MCP Interface

Slide the tiles of a square board left, right, up or down. Equal neighbours
merge into their sum and add it to the score; every move that changes the board
spawns a 2 (90%) or a 4 (10%) on an empty cell. The game ends when the board is
full and no two neighbours are equal.

AVAILABLE TOOLS:
- new_game: start a game and get its session_id
- move: slide the board of a session in one direction
- game_state: show the board, score and status of a session
- end_game: discard a session`

// Server wraps an MCP server bound to a session manager
type Server struct {
	sessions  *session.Manager
	logger    *zap.Logger
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server with all game tools registered
func NewServer(sessions *session.Manager, version string, logger *zap.Logger) *Server {
	s := &Server{
		sessions: sessions,
		logger:   logger,
		mcpServer: server.NewMCPServer(
			"merge2048",
			version,
			server.WithToolCapabilities(true),
			server.WithInstructions(instructions),
		),
	}

	s.registerTools()
	return s
}

// MCPServer returns the underlying server, for ServeStdio
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID returned by new_game",
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new 2048 game and return its session_id and opening board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleNewGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide all tiles in one direction (left, right, up, down)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"description": "Direction to slide",
					"enum":        []string{"left", "right", "up", "down"},
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, s.handleMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the board, score and status of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, s.handleGameState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "end_game",
		Description: "Discard a game session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, s.handleEndGame)
}

func (s *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, opening, err := s.sessions.Create()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Started game %s\n\n", state.ID)
	writeState(&sb, state, s.sessions.VictoryTile())
	writeEvents(&sb, opening)
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, err := sessionArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	raw, _ := args["direction"].(string)
	dir, err := game.ParseDirection(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, res, err := s.sessions.Move(id, dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	switch {
	case res.Changed:
		fmt.Fprintf(&sb, "Moved %s, +%d points\n\n", dir, res.ScoreDelta)
	case state.GameOver:
		fmt.Fprintf(&sb, "The game is over, %s changes nothing\n\n", dir)
	default:
		fmt.Fprintf(&sb, "Nothing moved %s, try another direction\n\n", dir)
	}
	writeState(&sb, state, s.sessions.VictoryTile())
	writeEvents(&sb, res.Events)
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionArg(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.sessions.Snapshot(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	writeState(&sb, state, s.sessions.VictoryTile())
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleEndGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionArg(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.sessions.Discard(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Ended game %s", id)), nil
}

// HandleHTTP serves single JSON-RPC messages posted to the MCP endpoint
func (s *Server) HandleHTTP(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request"})
		return
	}

	response := s.mcpServer.HandleMessage(c.Request.Context(), body)
	if response == nil {
		// Notifications carry no reply
		c.Status(http.StatusAccepted)
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("failed to marshal MCP response", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to marshal response"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

var errMissingSession = errors.New("session_id is required")

func sessionArg(args map[string]interface{}) (uuid.UUID, error) {
	raw, _ := args["session_id"].(string)
	if raw == "" {
		return uuid.Nil, errMissingSession
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid session_id %q: %w", raw, err)
	}
	return id, nil
}

func writeState(sb *strings.Builder, state session.State, victoryTile int) {
	sb.WriteString(state.Grid.String())
	fmt.Fprintf(sb, "\nScore: %d  Moves: %d  Max tile: %d\n", state.Score, state.Moves, state.Grid.MaxTile())

	switch {
	case state.GameOver:
		sb.WriteString("Status: game over, no moves left\n")
	case state.Victory:
		fmt.Fprintf(sb, "Status: reached %d, still playing\n", victoryTile)
	default:
		sb.WriteString("Status: playing\n")
	}
}

func writeEvents(sb *strings.Builder, events []game.TileEvent) {
	if len(events) == 0 {
		return
	}
	sb.WriteString("\nEvents:\n")
	for _, ev := range events {
		fmt.Fprintf(sb, "- %s\n", ev)
	}
}
