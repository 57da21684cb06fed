package game

// SlideResult is the outcome of sliding a grid without spawning
type SlideResult struct {
	Grid    Grid
	Score   int
	Changed bool
	Events  []TileEvent
}

// tile is a non-empty cell of a line, indexed by slot in slide order
type tile struct {
	slot  int
	value int
}

// mergeResult represents the result of merging a line
type mergeResult struct {
	line   []int
	dest   []int // destination slot for each input tile
	merges []int // slots that received a merge
	score  int
}

// Slide moves every line of the grid toward the direction's edge and merges
// equal neighbours. It has no side effects and never spawns.
func Slide(g Grid, dir Direction) SlideResult {
	if !dir.Valid() {
		violate("Slide", "unknown direction %d", int(dir))
	}

	next := NewGrid(g.size)
	result := SlideResult{}

	for line := 0; line < g.size; line++ {
		// Extract non-zero values in slide order
		var tiles []tile
		for slot := 0; slot < g.size; slot++ {
			pos := linePosition(dir, line, slot, g.size)
			if v := g.cells[pos.Row*g.size+pos.Col]; v != 0 {
				tiles = append(tiles, tile{slot: slot, value: v})
			}
		}

		// Merge adjacent equal values
		merged := mergeLine(tiles)
		result.Score += merged.score

		// Place back against the target edge
		for slot, v := range merged.line {
			pos := linePosition(dir, line, slot, g.size)
			next.cells[pos.Row*g.size+pos.Col] = v
		}

		result.Events = append(result.Events, lineEvents(dir, line, g.size, tiles, merged)...)
	}

	result.Grid = next
	result.Changed = !next.Equal(g)
	return result
}

// mergeLine merges adjacent equal values in a line. A tile produced by a
// merge is never merged again in the same pass.
func mergeLine(tiles []tile) mergeResult {
	res := mergeResult{dest: make([]int, len(tiles))}

	i := 0
	for i < len(tiles) {
		slot := len(res.line)
		if i+1 < len(tiles) && tiles[i].value == tiles[i+1].value {
			// Merge the two tiles
			value := tiles[i].value * 2
			res.line = append(res.line, value)
			res.merges = append(res.merges, slot)
			res.score += value
			res.dest[i] = slot
			res.dest[i+1] = slot
			i += 2 // Skip both tiles
		} else {
			// Keep the tile as is
			res.line = append(res.line, tiles[i].value)
			res.dest[i] = slot
			i++
		}
	}

	return res
}

// lineEvents emits moved events in slide order, with a merged event right
// after the second tile of each pair.
func lineEvents(dir Direction, line, size int, tiles []tile, merged mergeResult) []TileEvent {
	var events []TileEvent
	next := 0
	for i, t := range tiles {
		to := merged.dest[i]
		if t.slot != to {
			events = append(events, movedEvent(
				linePosition(dir, line, t.slot, size),
				linePosition(dir, line, to, size),
				t.value,
			))
		}

		pairEnd := i+1 >= len(tiles) || merged.dest[i+1] != to
		if next < len(merged.merges) && merged.merges[next] == to && pairEnd {
			events = append(events, mergedEvent(linePosition(dir, line, to, size), merged.line[to]))
			next++
		}
	}
	return events
}

// linePosition maps a slot of a line to a grid cell. Slot 0 is always the
// target edge of the direction.
func linePosition(dir Direction, line, slot, size int) Position {
	idx := slot
	if dir.towardEnd() {
		idx = size - 1 - slot
	}
	if dir.horizontal() {
		return Position{Row: line, Col: idx}
	}
	return Position{Row: idx, Col: line}
}
