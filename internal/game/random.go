package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource is the randomness the spawn rule needs.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	// IntN returns a value in [0, n)
	IntN(n int) int
	// Float64 returns a value in [0.0, 1.0)
	Float64() float64
}

// FourProbability is the chance that a spawned tile is a 4 instead of a 2
const FourProbability = 0.1

// NewSeededSource returns a deterministic ChaCha8 source for the seed
func NewSeededSource(seed uint64) *rand.Rand {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], seed^0x9e3779b97f4a7c15)
	return rand.New(rand.NewChaCha8(key))
}

// NewRandomSource returns a ChaCha8 source seeded from crypto/rand
func NewRandomSource() *rand.Rand {
	var key [32]byte
	_, _ = crand.Read(key[:])
	return rand.New(rand.NewChaCha8(key))
}

// spawnTile places a 2 or a 4 on a uniformly chosen empty cell.
// It reports false when the grid has no empty cell.
func spawnTile(g Grid, rng RandomSource) (Grid, TileEvent, bool) {
	empty := g.EmptyCells()
	if len(empty) == 0 {
		return g, TileEvent{}, false
	}

	// Choose random empty cell
	pos := empty[rng.IntN(len(empty))]

	// 90% chance for 2, 10% chance for 4
	value := 2
	if rng.Float64() < FourProbability {
		value = 4
	}

	return g.With(pos.Row, pos.Col, value), spawnedEvent(pos, value), true
}
