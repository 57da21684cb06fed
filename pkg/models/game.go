package models

import (
	"time"

	"merge2048/internal/game"

	"github.com/google/uuid"
)

// Board is the wire form of a grid, a square matrix with 0 for empty cells
type Board [][]int

// Message types exchanged over the WebSocket connection
const (
	MessageMove       = "move"
	MessageNewGame    = "new_game"
	MessageGetState   = "get_state"
	MessageGameState  = "game_state"
	MessageMoveResult = "move_result"
	MessageSession    = "session"
	MessageError      = "error"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// MoveRequest represents a move request from the client
type MoveRequest struct {
	Direction string `json:"direction"`
}

// GameResponse represents the state sent to the client, optionally with the
// outcome of the move that produced it
type GameResponse struct {
	SessionID  uuid.UUID        `json:"session_id"`
	Board      Board            `json:"board"`
	Size       int              `json:"size"`
	Score      int              `json:"score"`
	ScoreDelta int              `json:"score_delta"`
	Changed    bool             `json:"changed"`
	GameOver   bool             `json:"game_over"`
	Victory    bool             `json:"victory"`
	MaxTile    int              `json:"max_tile"`
	Moves      int              `json:"moves"`
	Events     []game.TileEvent `json:"events,omitempty"`
	Message    string           `json:"message,omitempty"`
}

// SessionResponse is returned when a new game session is created
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Game      GameResponse `json:"game"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error codes carried in ErrorResponse.Code
const (
	CodeInvalidDirection = "invalid_direction"
	CodeInvalidRequest   = "invalid_request"
	CodeUnauthorized     = "unauthorized"
	CodeSessionNotFound  = "session_not_found"
	CodeTooManySessions  = "too_many_sessions"
	CodeInternal         = "internal_error"
)

// NewGameResponse builds the wire state of a game without move details
func NewGameResponse(id uuid.UUID, grid game.Grid, score, moves int, gameOver, victory bool) GameResponse {
	return GameResponse{
		SessionID: id,
		Board:     Board(grid.Rows()),
		Size:      grid.Size(),
		Score:     score,
		GameOver:  gameOver,
		Victory:   victory,
		MaxTile:   grid.MaxTile(),
		Moves:     moves,
	}
}

// WithMove attaches the outcome of a move to the response
func (r GameResponse) WithMove(res game.MoveResult) GameResponse {
	r.ScoreDelta = res.ScoreDelta
	r.Changed = res.Changed
	r.Events = res.Events
	return r
}
