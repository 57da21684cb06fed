package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"merge2048/internal/auth"
	"merge2048/internal/game"
	"merge2048/internal/i18n"
	"merge2048/internal/session"
	"merge2048/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type testServer struct {
	router   *gin.Engine
	sessions *session.Manager
}

func newTestServer(t *testing.T, opts session.Options) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tr, err := i18n.New("en", []string{"en", "es"})
	if err != nil {
		t.Fatalf("i18n: %v", err)
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	sessions := session.NewManager(opts, zap.NewNop())
	h := NewSessionHandler(sessions, auth.NewTokenService("test-secret", time.Hour), tr, zap.NewNop())

	router := gin.New()
	router.Use(i18n.Middleware(tr))
	router.GET("/health", Health(sessions))
	h.RegisterRoutes(router.Group("/api"))

	return &testServer{router: router, sessions: sessions}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) create(t *testing.T) models.SessionResponse {
	t.Helper()
	w := s.do(http.MethodPost, "/api/sessions", "", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return resp
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(t, session.Options{})
	resp := s.create(t)

	if resp.Token == "" {
		t.Error("expected a token")
	}
	if len(resp.Game.Events) != game.InitialTiles {
		t.Errorf("expected %d opening events, got %d", game.InitialTiles, len(resp.Game.Events))
	}
	for _, ev := range resp.Game.Events {
		if ev.Kind != game.EventSpawned {
			t.Errorf("opening event should be a spawn, got %s", ev.Kind)
		}
	}
	if resp.Game.Size != 4 || len(resp.Game.Board) != 4 {
		t.Errorf("expected a 4x4 board, got %v", resp.Game.Board)
	}
	if resp.Game.Message != "New game started!" {
		t.Errorf("unexpected message %q", resp.Game.Message)
	}
}

func TestGetState(t *testing.T) {
	s := newTestServer(t, session.Options{})
	created := s.create(t)

	w := s.do(http.MethodGet, "/api/session", created.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var state models.GameResponse
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.SessionID != created.Game.SessionID {
		t.Errorf("expected session %s, got %s", created.Game.SessionID, state.SessionID)
	}
	if len(state.Events) != 0 {
		t.Errorf("state should carry no events, got %v", state.Events)
	}
}

func TestTokenQueryParameter(t *testing.T) {
	s := newTestServer(t, session.Options{})
	created := s.create(t)

	w := s.do(http.MethodGet, "/api/session?token="+created.Token, "", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with query token, got %d", w.Code)
	}
}

func TestMove(t *testing.T) {
	s := newTestServer(t, session.Options{})
	created := s.create(t)

	changed := false
	for _, dir := range []string{"left", "right", "up", "down"} {
		w := s.do(http.MethodPost, "/api/session/move", created.Token, `{"direction":"`+dir+`"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", dir, w.Code, w.Body.String())
		}

		var resp models.GameResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Changed {
			if len(resp.Events) != 0 {
				t.Errorf("unchanged move should carry no events, got %v", resp.Events)
			}
			continue
		}

		changed = true
		last := resp.Events[len(resp.Events)-1]
		if last.Kind != game.EventSpawned {
			t.Errorf("expected the last event to be a spawn, got %v", last)
		}
		if resp.Moves == 0 {
			t.Error("expected move counter to advance")
		}
		break
	}
	if !changed {
		t.Error("expected some move to change the board")
	}
}

func TestMoveRejectsBadInput(t *testing.T) {
	s := newTestServer(t, session.Options{})
	created := s.create(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"unknown direction", `{"direction":"diagonal"}`, models.CodeInvalidDirection},
		{"empty direction", `{"direction":""}`, models.CodeInvalidDirection},
		{"not json", `left`, models.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/session/move", created.Token, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if got := decodeError(t, w).Code; got != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, got)
			}
		})
	}
}

func TestUnauthorized(t *testing.T) {
	s := newTestServer(t, session.Options{})

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"invalid", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, "/api/session", tt.token, "")
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
			if got := decodeError(t, w).Code; got != models.CodeUnauthorized {
				t.Errorf("expected code %s, got %s", models.CodeUnauthorized, got)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	s := newTestServer(t, session.Options{})
	created := s.create(t)

	if w := s.do(http.MethodDelete, "/api/session", created.Token, ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w := s.do(http.MethodGet, "/api/session", created.Token, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after discard, got %d", w.Code)
	}
	if got := decodeError(t, w).Code; got != models.CodeSessionNotFound {
		t.Errorf("expected code %s, got %s", models.CodeSessionNotFound, got)
	}
}

func TestTooManySessions(t *testing.T) {
	s := newTestServer(t, session.Options{MaxSessions: 1})
	s.create(t)

	w := s.do(http.MethodPost, "/api/sessions", "", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if got := decodeError(t, w).Code; got != models.CodeTooManySessions {
		t.Errorf("expected code %s, got %s", models.CodeTooManySessions, got)
	}
}

func TestLocalisedErrors(t *testing.T) {
	s := newTestServer(t, session.Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/session?lang=es", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if got := decodeError(t, w).Message; got != "Falta el token de sesión." {
		t.Errorf("expected Spanish message, got %q", got)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, session.Options{})
	s.create(t)

	w := s.do(http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Status         string `json:"status"`
		ActiveSessions int    `json:"active_sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" || body.ActiveSessions != 1 {
		t.Errorf("unexpected health body %+v", body)
	}
}

func TestErrorReply(t *testing.T) {
	tr, err := i18n.New("en", []string{"en"})
	if err != nil {
		t.Fatalf("i18n: %v", err)
	}

	_, parseErr := game.ParseDirection("north")

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"parsed direction", parseErr, http.StatusBadRequest, models.CodeInvalidDirection,
			`Invalid direction "north", use left, right, up or down.`},
		{"direction value", fmt.Errorf("%w: %d", game.ErrInvalidDirection, 9), http.StatusBadRequest, models.CodeInvalidDirection,
			`Invalid direction "9", use left, right, up or down.`},
		{"not found", session.ErrSessionNotFound, http.StatusNotFound, models.CodeSessionNotFound,
			"Game session not found. Start a new game first."},
		{"too many", session.ErrTooManySessions, http.StatusServiceUnavailable, models.CodeTooManySessions,
			"Too many games in progress, try again later."},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, models.CodeInternal,
			"Internal server error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, message := ErrorReply(tr, "en", tt.err)
			if status != tt.status || code != tt.code {
				t.Errorf("got %d %s, want %d %s", status, code, tt.status, tt.code)
			}
			if message != tt.message {
				t.Errorf("message = %q, want %q", message, tt.message)
			}
		})
	}
}
