package game

// InitialTiles is the number of tiles spawned when a game starts
const InitialTiles = 2

// MoveResult is the outcome of one ApplyMove call
type MoveResult struct {
	Grid       Grid        `json:"grid"`
	ScoreDelta int         `json:"score_delta"`
	Changed    bool        `json:"changed"`
	Events     []TileEvent `json:"events"`
	GameOver   bool        `json:"game_over"`
}

// Engine handles the core 2048 game logic for a single session.
// It is not safe for concurrent use; callers serialise access.
type Engine struct {
	grid     Grid
	score    int
	gameOver bool
	rng      RandomSource
	opening  []TileEvent
}

// Option configures a new Engine
type Option func(*options)

type options struct {
	size int
	rng  RandomSource
}

// WithSize sets the board dimension (default 4)
func WithSize(size int) Option {
	return func(o *options) {
		o.size = size
	}
}

// WithRandomSource injects the spawn randomness
func WithRandomSource(rng RandomSource) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// New creates a new game with initial tiles
func New(opts ...Option) *Engine {
	o := options{size: DefaultSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = NewRandomSource()
	}

	e := &Engine{
		grid: NewGrid(o.size),
		rng:  o.rng,
	}

	// Add two initial tiles
	for i := 0; i < InitialTiles; i++ {
		next, event, ok := spawnTile(e.grid, e.rng)
		if !ok {
			break
		}
		e.grid = next
		e.opening = append(e.opening, event)
	}
	e.gameOver = e.grid.Stuck()

	return e
}

// Opening returns the spawn events produced when the game started
func (e *Engine) Opening() []TileEvent {
	events := make([]TileEvent, len(e.opening))
	copy(events, e.opening)
	return events
}

// ApplyMove executes a move in the given direction. Once the game is over
// every call is a no-op that reports the unchanged state.
func (e *Engine) ApplyMove(dir Direction) MoveResult {
	if !dir.Valid() {
		violate("ApplyMove", "unknown direction %d", int(dir))
	}

	if e.gameOver {
		return MoveResult{Grid: e.grid, Events: []TileEvent{}, GameOver: true}
	}

	slid := Slide(e.grid, dir)
	if !slid.Changed {
		return MoveResult{Grid: e.grid, Events: []TileEvent{}, GameOver: e.gameOver}
	}

	next := slid.Grid
	events := slid.Events

	// Add a new tile since the move was valid
	if spawned, event, ok := spawnTile(next, e.rng); ok {
		next = spawned
		events = append(events, event)
	}

	e.grid = next
	e.score += slid.Score
	e.gameOver = e.grid.Stuck()

	return MoveResult{
		Grid:       e.grid,
		ScoreDelta: slid.Score,
		Changed:    true,
		Events:     events,
		GameOver:   e.gameOver,
	}
}

// CanMove reports whether moving in dir would change the grid.
// It does not touch the score, the grid or the random source.
func (e *Engine) CanMove(dir Direction) bool {
	return Slide(e.grid, dir).Changed
}

// IsGameOver checks if the game is over (no valid moves available)
func (e *Engine) IsGameOver() bool {
	return e.gameOver
}

// Grid returns a snapshot of the current board
func (e *Engine) Grid() Grid {
	return e.grid
}

// Score returns the cumulative score
func (e *Engine) Score() int {
	return e.score
}

// EmptyCells returns the empty positions in row-major order
func (e *Engine) EmptyCells() []Position {
	return e.grid.EmptyCells()
}

// Reached checks if the board holds a tile of at least target
func (e *Engine) Reached(target int) bool {
	return e.grid.MaxTile() >= target
}
