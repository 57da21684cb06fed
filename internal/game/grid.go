package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// DefaultSize is the standard board dimension
	DefaultSize = 4
	// MinSize and MaxSize bound the configurable board dimension
	MinSize = 2
	MaxSize = 8
)

// Position identifies a cell on the grid
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String formats the position as (row,col)
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Grid is an immutable size x size board of tile values. 0 is an empty cell.
// Methods that change a cell return a new Grid and never touch the receiver.
type Grid struct {
	size  int
	cells []int
}

// NewGrid creates an empty grid of the given size
func NewGrid(size int) Grid {
	if size < MinSize || size > MaxSize {
		violate("NewGrid", "size %d outside [%d,%d]", size, MinSize, MaxSize)
	}
	return Grid{size: size, cells: make([]int, size*size)}
}

// GridFromRows builds a grid from a square matrix of values
func GridFromRows(rows [][]int) (Grid, error) {
	size := len(rows)
	if size < MinSize || size > MaxSize {
		return Grid{}, fmt.Errorf("grid must have between %d and %d rows, got %d", MinSize, MaxSize, size)
	}

	g := NewGrid(size)
	for r, row := range rows {
		if len(row) != size {
			return Grid{}, fmt.Errorf("row %d has %d cells, expected %d", r, len(row), size)
		}
		for c, v := range row {
			if !validTile(v) {
				return Grid{}, fmt.Errorf("cell (%d,%d) holds %d, which is not 0 or a power of two >= 2", r, c, v)
			}
			g.cells[r*size+c] = v
		}
	}
	return g, nil
}

// MustGrid is GridFromRows for literals known to be valid
func MustGrid(rows [][]int) Grid {
	g, err := GridFromRows(rows)
	if err != nil {
		violate("MustGrid", "%v", err)
	}
	return g
}

func validTile(v int) bool {
	return v == 0 || (v >= 2 && v&(v-1) == 0)
}

// Size returns the board dimension
func (g Grid) Size() int {
	return g.size
}

// At returns the value at the given cell
func (g Grid) At(row, col int) int {
	g.check("At", row, col)
	return g.cells[row*g.size+col]
}

// With returns a copy of the grid with one cell replaced
func (g Grid) With(row, col, value int) Grid {
	g.check("With", row, col)
	if !validTile(value) {
		violate("With", "value %d is not 0 or a power of two >= 2", value)
	}
	next := g.clone()
	next.cells[row*g.size+col] = value
	return next
}

func (g Grid) check(op string, row, col int) {
	if row < 0 || row >= g.size || col < 0 || col >= g.size {
		violate(op, "cell (%d,%d) outside %dx%d grid", row, col, g.size, g.size)
	}
}

func (g Grid) clone() Grid {
	cells := make([]int, len(g.cells))
	copy(cells, g.cells)
	return Grid{size: g.size, cells: cells}
}

// EmptyCells returns every empty position in row-major order
func (g Grid) EmptyCells() []Position {
	var empty []Position
	for i, v := range g.cells {
		if v == 0 {
			empty = append(empty, Position{Row: i / g.size, Col: i % g.size})
		}
	}
	return empty
}

// IsFull reports whether no cell is empty
func (g Grid) IsFull() bool {
	for _, v := range g.cells {
		if v == 0 {
			return false
		}
	}
	return true
}

// HasAdjacentPair reports whether two neighbouring cells share a non-zero value
func (g Grid) HasAdjacentPair() bool {
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			v := g.cells[r*g.size+c]
			if v == 0 {
				continue
			}
			if c+1 < g.size && g.cells[r*g.size+c+1] == v {
				return true
			}
			if r+1 < g.size && g.cells[(r+1)*g.size+c] == v {
				return true
			}
		}
	}
	return false
}

// Stuck reports whether no move can change the grid
func (g Grid) Stuck() bool {
	return g.IsFull() && !g.HasAdjacentPair()
}

// Sum returns the total of all tile values
func (g Grid) Sum() int {
	total := 0
	for _, v := range g.cells {
		total += v
	}
	return total
}

// MaxTile returns the highest tile value on the grid
func (g Grid) MaxTile() int {
	best := 0
	for _, v := range g.cells {
		if v > best {
			best = v
		}
	}
	return best
}

// Equal reports whether both grids have the same size and values
func (g Grid) Equal(other Grid) bool {
	if g.size != other.size {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Rows returns a fresh matrix copy of the grid
func (g Grid) Rows() [][]int {
	rows := make([][]int, g.size)
	for r := range rows {
		rows[r] = make([]int, g.size)
		copy(rows[r], g.cells[r*g.size:(r+1)*g.size])
	}
	return rows
}

// String renders the grid as right-aligned columns
func (g Grid) String() string {
	width := len(fmt.Sprint(g.MaxTile()))
	if width < 1 {
		width = 1
	}

	var sb strings.Builder
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			v := g.cells[r*g.size+c]
			if v == 0 {
				sb.WriteString(fmt.Sprintf("%*s", width, "."))
			} else {
				sb.WriteString(fmt.Sprintf("%*d", width, v))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// MarshalJSON encodes the grid as a matrix
func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Rows())
}

// UnmarshalJSON decodes a matrix and validates it
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]int
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}

	parsed, err := GridFromRows(rows)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
