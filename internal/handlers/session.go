package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"merge2048/internal/auth"
	"merge2048/internal/game"
	"merge2048/internal/i18n"
	"merge2048/internal/session"
	"merge2048/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionIDKey is the context key holding the authenticated session ID
const SessionIDKey = "session_id"

// SessionHandler serves the game session REST API
type SessionHandler struct {
	sessions *session.Manager
	tokens   *auth.TokenService
	i18n     *i18n.I18n
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Manager, tokens *auth.TokenService, tr *i18n.I18n, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		tokens:   tokens,
		i18n:     tr,
		logger:   logger,
	}
}

// RegisterRoutes mounts the session endpoints on the given group
func (h *SessionHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/sessions", h.Create)

	current := api.Group("/session", h.SessionMiddleware())
	{
		current.GET("", h.State)
		current.POST("/move", h.Move)
		current.DELETE("", h.Discard)
	}
}

// SessionMiddleware validates the session token and stores the session ID
func (h *SessionHandler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.TokenFromRequest(c.Request)
		if token == "" {
			h.abort(c, http.StatusUnauthorized, models.CodeUnauthorized, i18n.MsgMissingToken)
			return
		}

		id, err := h.tokens.Validate(token)
		if err != nil {
			h.abort(c, http.StatusUnauthorized, models.CodeUnauthorized, i18n.MsgInvalidToken)
			return
		}

		c.Set(SessionIDKey, id)
		c.Next()
	}
}

// Create starts a new game and returns its token
func (h *SessionHandler) Create(c *gin.Context) {
	state, opening, err := h.sessions.Create()
	if err != nil {
		h.fail(c, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(state.ID)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		_ = h.sessions.Discard(state.ID)
		h.abort(c, http.StatusInternalServerError, models.CodeInternal, i18n.MsgInternal)
		return
	}

	lang := i18n.GetLanguage(c)
	resp := state.Response()
	resp.Events = opening
	resp.Message = h.i18n.T(lang, i18n.MsgNewGame)

	c.JSON(http.StatusCreated, models.SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Game:      resp,
	})
}

// State returns the current game of the session
func (h *SessionHandler) State(c *gin.Context) {
	state, err := h.sessions.Snapshot(sessionID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := state.Response()
	resp.Message = h.i18n.GameStatus(i18n.GetLanguage(c), state.GameOver, state.Victory, h.sessions.VictoryTile(), state.Score)
	c.JSON(http.StatusOK, resp)
}

// Move applies one move and returns the events needed to animate it
func (h *SessionHandler) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, http.StatusBadRequest, models.CodeInvalidRequest, i18n.MsgInvalidRequest)
		return
	}

	dir, err := game.ParseDirection(req.Direction)
	if err != nil {
		lang := i18n.GetLanguage(c)
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Message: h.i18n.Tf(lang, i18n.MsgInvalidDirection, req.Direction),
			Code:    models.CodeInvalidDirection,
		})
		return
	}

	state, res, err := h.sessions.Move(sessionID(c), dir)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, MoveResponse(h.i18n, i18n.GetLanguage(c), state, res, h.sessions.VictoryTile()))
}

// Discard ends the session
func (h *SessionHandler) Discard(c *gin.Context) {
	if err := h.sessions.Discard(sessionID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MoveResponse builds the localised reply to a move
func MoveResponse(tr *i18n.I18n, lang string, state session.State, res game.MoveResult, victoryTile int) models.GameResponse {
	resp := state.Response().WithMove(res)
	resp.Message = tr.GameStatus(lang, state.GameOver, state.Victory, victoryTile, state.Score)
	if resp.Message == "" && !res.Changed {
		resp.Message = tr.T(lang, i18n.MsgNoChange)
	}
	return resp
}

// ErrorStatus maps a session error to its HTTP status, code and message key
func ErrorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, models.CodeSessionNotFound, i18n.MsgSessionNotFound
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusServiceUnavailable, models.CodeTooManySessions, i18n.MsgTooManySessions
	case errors.Is(err, game.ErrInvalidDirection):
		return http.StatusBadRequest, models.CodeInvalidDirection, i18n.MsgInvalidDirection
	default:
		return http.StatusInternalServerError, models.CodeInternal, i18n.MsgInternal
	}
}

// ErrorReply maps a session error to its HTTP status, code and localised message
func ErrorReply(tr *i18n.I18n, lang string, err error) (int, string, string) {
	status, code, key := ErrorStatus(err)
	if key == i18n.MsgInvalidDirection {
		return status, code, tr.Tf(lang, key, rejectedInput(err))
	}
	return status, code, tr.T(lang, key)
}

// rejectedInput recovers the text that ParseDirection or Manager.Move refused
func rejectedInput(err error) string {
	_, detail, _ := strings.Cut(err.Error(), game.ErrInvalidDirection.Error()+": ")
	if unquoted, uerr := strconv.Unquote(detail); uerr == nil {
		return unquoted
	}
	return detail
}

func (h *SessionHandler) fail(c *gin.Context, err error) {
	status, code, message := ErrorReply(h.i18n, i18n.GetLanguage(c), err)
	if status == http.StatusInternalServerError {
		h.logger.Error("session request failed", zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Message: message,
		Code:    code,
	})
}

func (h *SessionHandler) abort(c *gin.Context, status int, code, key string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Message: h.i18n.T(i18n.GetLanguage(c), key),
		Code:    code,
	})
}

func sessionID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(SessionIDKey)
	sid, _ := id.(uuid.UUID)
	return sid
}
