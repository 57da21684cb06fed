package game

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input string
		want  Direction
		ok    bool
	}{
		{"left", Left, true},
		{"Right", Right, true},
		{" UP ", Up, true},
		{"down", Down, true},
		{"w", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if tt.ok {
				if err != nil || got != tt.want {
					t.Errorf("ParseDirection(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
				}
				return
			}
			if !errors.Is(err, ErrInvalidDirection) {
				t.Errorf("expected ErrInvalidDirection, got %v", err)
			}
		})
	}
}

func TestDirectionJSON(t *testing.T) {
	var req struct {
		Direction Direction `json:"direction"`
	}

	if err := json.Unmarshal([]byte(`{"direction":"down"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Direction != Down {
		t.Errorf("expected down, got %s", req.Direction)
	}

	err := json.Unmarshal([]byte(`{"direction":"sideways"}`), &req)
	if !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}

	if _, err := json.Marshal(Direction(7)); err == nil {
		t.Error("expected marshal of unknown direction to fail")
	}
}
