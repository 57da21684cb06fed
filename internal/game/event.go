package game

import "fmt"

// EventKind identifies what happened to a tile during a move
type EventKind string

const (
	EventMoved   EventKind = "moved"
	EventMerged  EventKind = "merged"
	EventSpawned EventKind = "spawned"
)

// TileEvent tells the presentation layer how to animate one tile.
// For moved events From is set and Value is the sliding tile's value.
// For merged and spawned events To is the cell and Value is the resulting tile.
type TileEvent struct {
	Kind  EventKind `json:"kind"`
	From  *Position `json:"from,omitempty"`
	To    Position  `json:"to"`
	Value int       `json:"value"`
}

// At returns the cell the event lands on
func (e TileEvent) At() Position {
	return e.To
}

// String formats the event for logs and terminal output
func (e TileEvent) String() string {
	switch e.Kind {
	case EventMoved:
		return fmt.Sprintf("moved %d %s->%s", e.Value, e.From, e.To)
	case EventMerged:
		return fmt.Sprintf("merged %d at %s", e.Value, e.To)
	case EventSpawned:
		return fmt.Sprintf("spawned %d at %s", e.Value, e.To)
	default:
		return string(e.Kind)
	}
}

func movedEvent(from, to Position, value int) TileEvent {
	src := from
	return TileEvent{Kind: EventMoved, From: &src, To: to, Value: value}
}

func mergedEvent(at Position, value int) TileEvent {
	return TileEvent{Kind: EventMerged, To: at, Value: value}
}

func spawnedEvent(at Position, value int) TileEvent {
	return TileEvent{Kind: EventSpawned, To: at, Value: value}
}
