package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"merge2048/internal/game"
)

func seeded(seed uint64) func() *game.Engine {
	return func() *game.Engine {
		return game.New(game.WithRandomSource(game.NewSeededSource(seed)))
	}
}

func play(t *testing.T, input string, opts Options) string {
	t.Helper()
	var out bytes.Buffer
	c := New(strings.NewReader(input), &out, seeded(42), opts)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestQuit(t *testing.T) {
	out := play(t, "q\n", Options{})
	if !strings.Contains(out, "Commands:") {
		t.Error("expected help on start")
	}
	if !strings.Contains(out, "Final score: 0") {
		t.Errorf("expected final score, got %q", out)
	}
}

func TestEndOfInput(t *testing.T) {
	out := play(t, "", Options{})
	if strings.Count(out, "Score: 0  Moves: 0") != 1 {
		t.Errorf("expected the opening board once, got %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	out := play(t, "jump\nq\n", Options{})
	if !strings.Contains(out, `Unknown command "jump"`) {
		t.Errorf("expected unknown command message, got %q", out)
	}
}

func TestMovesAdvanceTheGame(t *testing.T) {
	out := play(t, "a\nd\nw\ns\nleft\nq\n", Options{ShowEvents: true})

	if !strings.Contains(out, "Moves: 1") {
		t.Errorf("expected at least one move to change the board, got %q", out)
	}
	if !strings.Contains(out, "spawned") {
		t.Errorf("expected event lines, got %q", out)
	}
}

func TestEventsHiddenByDefault(t *testing.T) {
	out := play(t, "a\nd\nw\ns\nq\n", Options{})
	if strings.Contains(out, "spawned") {
		t.Errorf("expected no event lines, got %q", out)
	}
}

func TestNewGameResetsMoves(t *testing.T) {
	out := play(t, "a\nd\nn\nq\n", Options{})

	idx := strings.LastIndex(out, "Moves: 0")
	if idx < 0 || idx < strings.Index(out, "Moves: 1") {
		t.Errorf("expected a fresh board after n, got %q", out)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	c := New(strings.NewReader("a\n"), &out, seeded(1), Options{})
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Contains(out.String(), "Moves: 1") {
		t.Error("no command should run after cancellation")
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		input string
		want  game.Direction
	}{
		{"w", game.Up},
		{"a", game.Left},
		{"s", game.Down},
		{"d", game.Right},
		{"right", game.Right},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseKey(tt.input)
			if err != nil || got != tt.want {
				t.Errorf("parseKey(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
			}
		})
	}

	if _, err := parseKey("x"); err == nil {
		t.Error("expected an error for x")
	}
}
