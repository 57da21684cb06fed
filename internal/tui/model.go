// Package tui is a full-screen terminal front end built on bubbletea.
package tui

import (
	"fmt"
	"strings"

	"merge2048/internal/game"

	tea "github.com/charmbracelet/bubbletea"
)

// Model drives one game in response to key presses
type Model struct {
	newEngine   func() *game.Engine
	victoryTile int

	engine    *game.Engine
	moves     int
	lastDelta int
	status    string
	announced bool
}

// NewModel creates a model and starts the first game
func NewModel(newEngine func() *game.Engine, victoryTile int) Model {
	if victoryTile == 0 {
		victoryTile = 2048
	}
	m := Model{newEngine: newEngine, victoryTile: victoryTile}
	m.restart()
	return m
}

func (m *Model) restart() {
	m.engine = m.newEngine()
	m.moves = 0
	m.lastDelta = 0
	m.status = ""
	m.announced = false
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "n":
		m.restart()
		return m, nil
	}

	dir, ok := keyDirection(key.String())
	if !ok {
		return m, nil
	}
	m.move(dir)
	return m, nil
}

func keyDirection(key string) (game.Direction, bool) {
	switch key {
	case "left", "a", "h":
		return game.Left, true
	case "right", "d", "l":
		return game.Right, true
	case "up", "w", "k":
		return game.Up, true
	case "down", "s", "j":
		return game.Down, true
	}
	return 0, false
}

func (m *Model) move(dir game.Direction) {
	if m.engine.IsGameOver() {
		return
	}

	res := m.engine.ApplyMove(dir)
	if !res.Changed {
		m.status = fmt.Sprintf("nothing moves %s", dir)
		return
	}

	m.moves++
	m.lastDelta = res.ScoreDelta
	m.status = ""

	if !m.announced && m.engine.Reached(m.victoryTile) {
		m.announced = true
		m.status = fmt.Sprintf("you reached %d, keep going", m.victoryTile)
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("2048\n\n")

	grid := m.engine.Grid()
	width := len(fmt.Sprint(grid.MaxTile()))
	if width < 4 {
		width = 4
	}
	border := "+" + strings.Repeat(strings.Repeat("-", width+2)+"+", grid.Size()) + "\n"

	b.WriteString(border)
	for _, row := range grid.Rows() {
		b.WriteString("|")
		for _, v := range row {
			cell := ""
			if v != 0 {
				cell = fmt.Sprint(v)
			}
			fmt.Fprintf(&b, " %*s |", width, cell)
		}
		b.WriteString("\n")
		b.WriteString(border)
	}

	fmt.Fprintf(&b, "\nScore: %d", m.engine.Score())
	if m.lastDelta > 0 {
		fmt.Fprintf(&b, " (+%d)", m.lastDelta)
	}
	fmt.Fprintf(&b, "  Moves: %d\n", m.moves)

	switch {
	case m.engine.IsGameOver():
		b.WriteString("Game over! n: new game  q: quit\n")
	case m.status != "":
		b.WriteString(m.status + "\n")
	default:
		b.WriteString("\n")
	}

	b.WriteString("\narrows/wasd/hjkl: move  n: new game  q: quit\n")
	return b.String()
}

// Score returns the score of the current game
func (m Model) Score() int {
	return m.engine.Score()
}
