package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"merge2048/internal/console"
	"merge2048/internal/game"
	"merge2048/internal/tui"
	"merge2048/internal/version"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := &cli.Command{
		Name:    "play",
		Usage:   "play 2048 in the terminal",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "size",
				Usage:   "board dimension",
				Value:   game.DefaultSize,
				Sources: cli.EnvVars("GRID_SIZE"),
			},
			&cli.Uint64Flag{
				Name:    "seed",
				Usage:   "seed for reproducible games, 0 picks a random one",
				Sources: cli.EnvVars("RANDOM_SEED"),
			},
			&cli.IntFlag{
				Name:    "target",
				Usage:   "tile that counts as a win",
				Value:   2048,
				Sources: cli.EnvVars("VICTORY_TILE"),
			},
			&cli.BoolFlag{
				Name:  "events",
				Usage: "print tile events after every move",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "full-screen mode with arrow keys",
			},
		},
		Action: play,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "play: %v\n", err)
		os.Exit(1)
	}
}

func play(ctx context.Context, cmd *cli.Command) error {
	size := cmd.Int("size")
	if size < game.MinSize || size > game.MaxSize {
		return fmt.Errorf("size must be between %d and %d, got %d", game.MinSize, game.MaxSize, size)
	}

	seed := cmd.Uint64("seed")
	games := uint64(0)
	newEngine := func() *game.Engine {
		opts := []game.Option{game.WithSize(size)}
		if seed != 0 {
			opts = append(opts, game.WithRandomSource(game.NewSeededSource(seed+games)))
		}
		games++
		return game.New(opts...)
	}

	if cmd.Bool("tui") {
		model := tui.NewModel(newEngine, cmd.Int("target"))
		final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
		if err != nil {
			return err
		}
		fmt.Printf("Final score: %d\n", final.(tui.Model).Score())
		return nil
	}

	c := console.New(os.Stdin, os.Stdout, newEngine, console.Options{
		VictoryTile: cmd.Int("target"),
		ShowEvents:  cmd.Bool("events"),
	})
	return c.Run(ctx)
}
