// Package session keeps the live games of the HTTP, WebSocket and MCP
// hosts in memory. Nothing is written to disk; a restart forgets every game.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"merge2048/internal/game"
	"merge2048/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrSessionNotFound is returned for unknown or evicted sessions
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when the concurrent game limit is reached
	ErrTooManySessions = errors.New("too many concurrent sessions")
)

// Options configures a Manager
type Options struct {
	// GridSize is the board dimension of new games
	GridSize int
	// VictoryTile marks a game as won once a tile reaches it; play continues
	VictoryTile int
	// MaxSessions caps live games, 0 means no limit
	MaxSessions int
	// IdleTimeout evicts games untouched for longer, 0 disables eviction
	IdleTimeout time.Duration
	// Seed makes spawns reproducible when non-zero
	Seed uint64
	// Now overrides the clock, for tests
	Now func() time.Time
	// OnEvict is called with the sessions removed by Sweep, after the
	// registry lock is released
	OnEvict func(ids []uuid.UUID)
}

// State is a point-in-time copy of a session
type State struct {
	ID        uuid.UUID
	Grid      game.Grid
	Score     int
	Moves     int
	GameOver  bool
	Victory   bool
	CreatedAt time.Time
}

// Session is one game in progress
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu       sync.Mutex
	engine   *game.Engine
	moves    int
	lastSeen time.Time
}

// Manager owns every live session
type Manager struct {
	opts     Options
	logger   *zap.Logger
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	created  uint64
}

// NewManager creates an empty session registry
func NewManager(opts Options, logger *zap.Logger) *Manager {
	if opts.GridSize == 0 {
		opts.GridSize = game.DefaultSize
	}
	if opts.VictoryTile == 0 {
		opts.VictoryTile = 2048
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		opts:     opts,
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create starts a new game and returns its state with the opening spawns
func (m *Manager) Create() (State, []game.TileEvent, error) {
	m.mu.Lock()
	if m.opts.MaxSessions > 0 && len(m.sessions) >= m.opts.MaxSessions {
		m.mu.Unlock()
		return State{}, nil, ErrTooManySessions
	}

	rng := game.NewRandomSource()
	if m.opts.Seed != 0 {
		rng = game.NewSeededSource(m.opts.Seed + m.created)
	}
	m.created++

	now := m.opts.Now()
	s := &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		engine:    game.New(game.WithSize(m.opts.GridSize), game.WithRandomSource(rng)),
		lastSeen:  now,
	}
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", s.ID.String()),
		zap.Int("grid_size", m.opts.GridSize),
		zap.Int("active_sessions", count),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	return m.stateLocked(s), s.engine.Opening(), nil
}

// Move applies one move to the session's game
func (m *Manager) Move(id uuid.UUID, dir game.Direction) (State, game.MoveResult, error) {
	return m.MoveThen(id, dir, nil)
}

// MoveThen applies one move and calls observe before the session is unlocked,
// so observers of one session see its moves in the order they were applied.
// observe must not call back into the same session.
func (m *Manager) MoveThen(id uuid.UUID, dir game.Direction, observe func(State, game.MoveResult)) (State, game.MoveResult, error) {
	if !dir.Valid() {
		return State{}, game.MoveResult{}, fmt.Errorf("%w: %d", game.ErrInvalidDirection, int(dir))
	}

	s, err := m.get(id)
	if err != nil {
		return State{}, game.MoveResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wasOver := s.engine.IsGameOver()
	res := s.engine.ApplyMove(dir)
	if res.Changed {
		s.moves++
	}
	s.lastSeen = m.opts.Now()

	if res.GameOver && !wasOver {
		m.logger.Info("game over",
			zap.String("session_id", id.String()),
			zap.Int("score", s.engine.Score()),
			zap.Int("max_tile", res.Grid.MaxTile()),
			zap.Int("moves", s.moves),
		)
	}

	state := m.stateLocked(s)
	if observe != nil {
		observe(state, res)
	}
	return state, res, nil
}

// Snapshot returns the current state of a session
func (m *Manager) Snapshot(id uuid.UUID) (State, error) {
	s, err := m.get(id)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = m.opts.Now()
	return m.stateLocked(s), nil
}

// Discard ends a session
func (m *Manager) Discard(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.logger.Info("session discarded", zap.String("session_id", id.String()))
	return nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle since before now minus the idle timeout and
// returns how many were removed
func (m *Manager) Sweep(now time.Time) int {
	if m.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.opts.IdleTimeout)

	m.mu.Lock()
	var evicted []uuid.UUID
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()

		if idle {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	active := len(m.sessions)
	m.mu.Unlock()

	if len(evicted) == 0 {
		return 0
	}

	m.logger.Info("evicted idle sessions",
		zap.Int("removed", len(evicted)),
		zap.Int("active_sessions", active),
	)
	if m.opts.OnEvict != nil {
		m.opts.OnEvict(evicted)
	}
	return len(evicted)
}

// Run sweeps idle sessions until the context is cancelled
func (m *Manager) Run(ctx context.Context) {
	if m.opts.IdleTimeout <= 0 {
		return
	}

	interval := m.opts.IdleTimeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.opts.Now())
		}
	}
}

func (m *Manager) get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// stateLocked copies the session state; the caller holds s.mu
func (m *Manager) stateLocked(s *Session) State {
	return State{
		ID:        s.ID,
		Grid:      s.engine.Grid(),
		Score:     s.engine.Score(),
		Moves:     s.moves,
		GameOver:  s.engine.IsGameOver(),
		Victory:   s.engine.Reached(m.opts.VictoryTile),
		CreatedAt: s.CreatedAt,
	}
}

// VictoryTile returns the tile value that marks a game as won
func (m *Manager) VictoryTile() int {
	return m.opts.VictoryTile
}

// Response converts the state to its wire form
func (st State) Response() models.GameResponse {
	return models.NewGameResponse(st.ID, st.Grid, st.Score, st.Moves, st.GameOver, st.Victory)
}
