// Package game implements the 2048 board transition engine.
//
// An Engine owns one grid, its cumulative score and a sticky game-over flag.
// ApplyMove slides and merges every line toward the chosen edge, spawns a new
// tile when the board changed and reports the per-tile events a presentation
// layer needs to replay the move. The engine never blocks, logs or keeps time.
package game
