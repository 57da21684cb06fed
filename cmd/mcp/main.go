package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"merge2048/internal/game"
	"merge2048/internal/logging"
	"merge2048/internal/mcp"
	"merge2048/internal/session"
	"merge2048/internal/version"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	// Stdout carries the protocol; a missing .env is fine
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:    "merge2048-mcp",
		Usage:   "serve 2048 games to MCP clients over stdio",
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
			&cli.IntFlag{
				Name:    "max-games",
				Usage:   "maximum concurrent games, 0 for no limit",
				Value:   100,
				Sources: cli.EnvVars("MAX_CONCURRENT_GAMES"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: serve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "merge2048-mcp: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	size := cmd.Int("size")
	if size < game.MinSize || size > game.MaxSize {
		return fmt.Errorf("size must be between %d and %d, got %d", game.MinSize, game.MaxSize, size)
	}

	// Production zap config writes to stderr, leaving stdout to the protocol
	logger, err := logging.New(cmd.String("log-level"), false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sessions := session.NewManager(session.Options{
		GridSize:    size,
		VictoryTile: cmd.Int("target"),
		MaxSessions: cmd.Int("max-games"),
		IdleTimeout: time.Hour,
		Seed:        cmd.Uint64("seed"),
	}, logger.Named("session"))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sessions.Run(runCtx)

	s := mcp.NewServer(sessions, version.String(), logger.Named("mcp"))
	logger.Info("serving MCP over stdio", zap.Int("grid_size", size))
	return server.ServeStdio(s.MCPServer())
}
