package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Direction represents the direction of a move
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions lists every valid direction in a fixed order
var Directions = []Direction{Left, Right, Up, Down}

// String returns the wire name of the direction
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	return d >= Left && d <= Down
}

// horizontal reports whether the direction moves tiles along rows
func (d Direction) horizontal() bool {
	return d == Left || d == Right
}

// towardEnd reports whether the target edge is the last index of a line
func (d Direction) towardEnd() bool {
	return d == Right || d == Down
}

// ParseDirection parses a direction name such as "left" or "Up"
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// MarshalJSON encodes the direction by name
func (d Direction) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a direction name
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDirection, string(data))
	}

	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
