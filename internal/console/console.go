// Package console plays 2048 on a line-oriented terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"merge2048/internal/game"
)

const help = `Commands:
  w a s d      slide up, left, down, right (or type the direction)
  n            start a new game
  h            show this help
  q            quit
`

// Options tunes the console
type Options struct {
	VictoryTile int
	ShowEvents  bool
}

// Console reads commands and renders the board after each one
type Console struct {
	in        *bufio.Scanner
	out       io.Writer
	newEngine func() *game.Engine
	opts      Options

	engine    *game.Engine
	moves     int
	announced bool
}

// New creates a console. newEngine is called for the first game and for
// every "n" command.
func New(in io.Reader, out io.Writer, newEngine func() *game.Engine, opts Options) *Console {
	if opts.VictoryTile == 0 {
		opts.VictoryTile = 2048
	}
	return &Console{
		in:        bufio.NewScanner(in),
		out:       out,
		newEngine: newEngine,
		opts:      opts,
	}
}

// Run plays until the input ends, the player quits or ctx is cancelled
func (c *Console) Run(ctx context.Context) error {
	c.start()
	fmt.Fprint(c.out, help)
	c.render(nil)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(c.out, "> ")
		if !c.in.Scan() {
			fmt.Fprintln(c.out)
			return c.in.Err()
		}

		cmd := strings.ToLower(strings.TrimSpace(c.in.Text()))
		switch cmd {
		case "":
			continue
		case "q", "quit", "exit":
			fmt.Fprintf(c.out, "Final score: %d\n", c.engine.Score())
			return nil
		case "n", "new":
			c.start()
			c.render(c.engine.Opening())
		case "h", "help", "?":
			fmt.Fprint(c.out, help)
		default:
			dir, err := parseKey(cmd)
			if err != nil {
				fmt.Fprintf(c.out, "Unknown command %q, type h for help\n", cmd)
				continue
			}
			c.move(dir)
		}
	}
}

func (c *Console) start() {
	c.engine = c.newEngine()
	c.moves = 0
	c.announced = false
}

func (c *Console) move(dir game.Direction) {
	if c.engine.IsGameOver() {
		fmt.Fprintln(c.out, "Game over. Type n for a new game or q to quit.")
		return
	}

	res := c.engine.ApplyMove(dir)
	if !res.Changed {
		fmt.Fprintf(c.out, "Nothing moves %s\n", dir)
		return
	}

	c.moves++
	c.render(res.Events)
	if res.ScoreDelta > 0 {
		fmt.Fprintf(c.out, "+%d\n", res.ScoreDelta)
	}

	if !c.announced && c.engine.Reached(c.opts.VictoryTile) {
		c.announced = true
		fmt.Fprintf(c.out, "You reached %d! Keep going.\n", c.opts.VictoryTile)
	}
	if res.GameOver {
		fmt.Fprintf(c.out, "Game over after %d moves with %d points. Type n for a new game or q to quit.\n", c.moves, c.engine.Score())
	}
}

func (c *Console) render(events []game.TileEvent) {
	if c.opts.ShowEvents {
		for _, ev := range events {
			fmt.Fprintf(c.out, "  %s\n", ev)
		}
	}
	fmt.Fprintln(c.out)
	fmt.Fprint(c.out, c.engine.Grid().String())
	fmt.Fprintf(c.out, "\nScore: %d  Moves: %d\n", c.engine.Score(), c.moves)
}

func parseKey(cmd string) (game.Direction, error) {
	switch cmd {
	case "w":
		return game.Up, nil
	case "a":
		return game.Left, nil
	case "s":
		return game.Down, nil
	case "d":
		return game.Right, nil
	}
	return game.ParseDirection(cmd)
}
