package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"merge2048/internal/auth"
	"merge2048/internal/i18n"
	"merge2048/internal/session"
	"merge2048/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// sessionMessage is a payload for every connection watching one session
type sessionMessage struct {
	sessionID uuid.UUID
	data      []byte
}

// Hub maintains the set of active clients, grouped by the session they play
type Hub struct {
	// Clients per session; several tabs may watch the same game
	clients map[uuid.UUID]map[*Client]bool

	// Messages for every client of a session
	broadcast chan sessionMessage

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	sessions *session.Manager
	tokens   *auth.TokenService
	i18n     *i18n.I18n
	logger   *zap.Logger
	upgrader websocket.Upgrader

	// Mutex for thread safety
	mutex sync.RWMutex
}

// Client represents a WebSocket client
type Client struct {
	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	// Session the client plays, guarded by hub.mutex
	sessionID uuid.UUID

	// Language for status and error messages
	lang string

	// Hub reference
	hub *Hub
}

// NewHub creates a new WebSocket hub. Browser origins must appear in
// allowedOrigins unless it contains "*".
func NewHub(sessions *session.Manager, tokens *auth.TokenService, tr *i18n.I18n, allowedOrigins []string, logger *zap.Logger) *Hub {
	h := &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan sessionMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		sessions:   sessions,
		tokens:     tokens,
		i18n:       tr,
		logger:     logger,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), allowedOrigins)
		},
	}
	return h
}

func originAllowed(origin string, allowed []string) bool {
	// Non-browser clients send no Origin
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// Run starts the hub and stops it when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients[msg.sessionID] {
				select {
				case client.send <- msg.data:
				default:
					h.dropLocked(client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.clients[client.sessionID] == nil {
		h.clients[client.sessionID] = make(map[*Client]bool)
	}
	h.clients[client.sessionID][client] = true
	h.logger.Debug("client connected", zap.String("session_id", client.sessionID.String()))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.clients[client.sessionID][client] {
		h.dropLocked(client)
		h.logger.Debug("client disconnected", zap.String("session_id", client.sessionID.String()))
	}
}

// dropLocked removes the client and closes its send channel; the caller holds h.mutex
func (h *Hub) dropLocked(client *Client) {
	delete(h.clients[client.sessionID], client)
	if len(h.clients[client.sessionID]) == 0 {
		delete(h.clients, client.sessionID)
	}
	close(client.send)
}

// rebind moves a client to another session and reports whether it was the
// last client watching the previous one
func (h *Hub) rebind(client *Client, sessionID uuid.UUID) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !h.clients[client.sessionID][client] {
		return false
	}
	delete(h.clients[client.sessionID], client)
	last := len(h.clients[client.sessionID]) == 0
	if last {
		delete(h.clients, client.sessionID)
	}

	client.sessionID = sessionID
	if h.clients[sessionID] == nil {
		h.clients[sessionID] = make(map[*Client]bool)
	}
	h.clients[sessionID][client] = true
	return last
}

// CloseSessions tells the clients of the given sessions that their game
// expired and disconnects them
func (h *Hub) CloseSessions(ids []uuid.UUID) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, id := range ids {
		for client := range h.clients[id] {
			data, err := json.Marshal(models.WebSocketMessage{
				Type: models.MessageError,
				Data: models.ErrorResponse{
					Message: h.i18n.T(client.lang, i18n.MsgSessionExpired),
					Code:    models.CodeSessionNotFound,
				},
			})
			if err == nil {
				select {
				case client.send <- data:
				default:
				}
			}
			h.dropLocked(client)
		}
		h.logger.Debug("closed clients of expired session", zap.String("session_id", id.String()))
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.dropLocked(client)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// HandleWebSocket upgrades a request carrying a valid session token
func (h *Hub) HandleWebSocket(c *gin.Context) {
	lang := i18n.GetLanguage(c)

	token := auth.TokenFromRequest(c.Request)
	if token == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Message: h.i18n.T(lang, i18n.MsgMissingToken),
			Code:    models.CodeUnauthorized,
		})
		return
	}

	sessionID, err := h.tokens.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Message: h.i18n.T(lang, i18n.MsgInvalidToken),
			Code:    models.CodeUnauthorized,
		})
		return
	}

	state, err := h.sessions.Snapshot(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Message: h.i18n.T(lang, i18n.MsgSessionNotFound),
			Code:    models.CodeSessionNotFound,
		})
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	client := &Client{
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sessionID,
		lang:      lang,
		hub:       h,
	}

	// The first frame is always the current game
	client.queue(client.stateMessage(state))

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// publish sends a message to every client of the session
func (h *Hub) publish(sessionID uuid.UUID, message models.WebSocketMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- sessionMessage{sessionID: sessionID, data: data}:
	case <-h.done:
	}
}

// currentSession returns the session the client plays
func (c *Client) currentSession() uuid.UUID {
	c.hub.mutex.RLock()
	defer c.hub.mutex.RUnlock()
	return c.sessionID
}

// queue writes to the send buffer of a client that is not registered yet
func (c *Client) queue(message models.WebSocketMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		c.hub.logger.Error("failed to marshal message", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// sendMessage queues a message for this client only
func (c *Client) sendMessage(message models.WebSocketMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		c.hub.logger.Error("failed to marshal message", zap.Error(err))
		return
	}

	c.hub.mutex.Lock()
	defer c.hub.mutex.Unlock()

	if !c.hub.clients[c.sessionID][c] {
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.dropLocked(c)
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", zap.Error(err))
			}
			break
		}

		var message models.WebSocketMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			c.sendError(models.CodeInvalidRequest, c.hub.i18n.T(c.lang, i18n.MsgInvalidRequest))
			continue
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
