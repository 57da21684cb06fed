package websocket

import (
	"encoding/json"

	"merge2048/internal/game"
	"merge2048/internal/handlers"
	"merge2048/internal/i18n"
	"merge2048/internal/session"
	"merge2048/pkg/models"

	"go.uber.org/zap"
)

// handleMessage handles incoming WebSocket messages
func (c *Client) handleMessage(message models.WebSocketMessage) {
	switch message.Type {
	case models.MessageMove:
		c.handleMove(message.Data)
	case models.MessageNewGame:
		c.handleNewGame()
	case models.MessageGetState:
		c.handleGetState()
	default:
		c.sendError(models.CodeInvalidRequest, c.hub.i18n.T(c.lang, i18n.MsgUnknownMessage))
	}
}

// handleMove applies a move and publishes the events to every client of the session
func (c *Client) handleMove(data interface{}) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		c.sendError(models.CodeInvalidRequest, c.hub.i18n.T(c.lang, i18n.MsgInvalidRequest))
		return
	}

	var moveRequest models.MoveRequest
	if err := json.Unmarshal(dataBytes, &moveRequest); err != nil {
		c.sendError(models.CodeInvalidRequest, c.hub.i18n.T(c.lang, i18n.MsgInvalidRequest))
		return
	}

	dir, err := game.ParseDirection(moveRequest.Direction)
	if err != nil {
		c.sendError(models.CodeInvalidDirection, c.hub.i18n.Tf(c.lang, i18n.MsgInvalidDirection, moveRequest.Direction))
		return
	}

	sessionID := c.currentSession()
	victoryTile := c.hub.sessions.VictoryTile()

	// Publishing while the session is locked keeps move_result frames in move order
	_, _, err = c.hub.sessions.MoveThen(sessionID, dir, func(state session.State, res game.MoveResult) {
		c.hub.publish(sessionID, models.WebSocketMessage{
			Type: models.MessageMoveResult,
			Data: handlers.MoveResponse(c.hub.i18n, c.lang, state, res, victoryTile),
		})
	})
	if err != nil {
		c.sendSessionError(err)
	}
}

// handleNewGame replaces the client's session with a fresh game
func (c *Client) handleNewGame() {
	state, opening, err := c.hub.sessions.Create()
	if err != nil {
		c.sendSessionError(err)
		return
	}

	token, expiresAt, err := c.hub.tokens.Issue(state.ID)
	if err != nil {
		c.hub.logger.Error("failed to issue session token", zap.Error(err))
		_ = c.hub.sessions.Discard(state.ID)
		c.sendError(models.CodeInternal, c.hub.i18n.T(c.lang, i18n.MsgInternal))
		return
	}

	previous := c.currentSession()
	if c.hub.rebind(c, state.ID) {
		if err := c.hub.sessions.Discard(previous); err != nil {
			c.hub.logger.Debug("previous session already gone", zap.String("session_id", previous.String()))
		}
	}

	resp := state.Response()
	resp.Events = opening
	resp.Message = c.hub.i18n.T(c.lang, i18n.MsgNewGame)

	c.sendMessage(models.WebSocketMessage{
		Type: models.MessageSession,
		Data: models.SessionResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			Game:      resp,
		},
	})
}

// handleGetState sends the current game to this client
func (c *Client) handleGetState() {
	state, err := c.hub.sessions.Snapshot(c.currentSession())
	if err != nil {
		c.sendSessionError(err)
		return
	}
	c.sendMessage(c.stateMessage(state))
}

func (c *Client) stateMessage(state session.State) models.WebSocketMessage {
	resp := state.Response()
	resp.Message = c.hub.i18n.GameStatus(c.lang, state.GameOver, state.Victory, c.hub.sessions.VictoryTile(), state.Score)
	return models.WebSocketMessage{
		Type: models.MessageGameState,
		Data: resp,
	}
}

func (c *Client) sendSessionError(err error) {
	_, code, message := handlers.ErrorReply(c.hub.i18n, c.lang, err)
	c.sendError(code, message)
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	c.sendMessage(models.WebSocketMessage{
		Type: models.MessageError,
		Data: models.ErrorResponse{
			Message: message,
			Code:    code,
		},
	})
}
