// Package engine implements the pure board logic for the 3x3 grid game.
//
// The engine package implements:
//   - Board and mark representation
//   - Win detection over the 8 fixed lines
//   - Draw detection
//
// The package holds no state of its own: every function is a pure function
// of a Board value. Turn order, player identity, and room membership live in
// the room package; the engine only answers questions about a board.
//
// Win Detection:
//
// WinningLine scans the 8 possible lines in a fixed order (rows, then
// columns, then diagonals) and returns the first completed one. The scan
// order is part of the contract: when more than one line is complete the
// same line is always reported, which keeps highlighting deterministic.
package engine
