// Command analyze enumerates the complete tic-tac-toe game tree and prints
// human-readable statistics: how many distinct games exist, how they split
// between X wins, O wins, and draws, and the perfect-play outcome of every
// opening move. Useful as a sanity check on the board engine.
package main

import (
	"fmt"

	"oxorooms/game/engine"
)

// Tally counts completed games by outcome.
type Tally struct {
	XWins int
	OWins int
	Draws int
}

// Total returns the number of completed games counted.
func (t Tally) Total() int {
	return t.XWins + t.OWins + t.Draws
}

// enumerate walks every legal continuation from the given position and
// accumulates terminal outcomes into the tally.
func enumerate(b engine.Board, turn engine.Mark, t *Tally) {
	switch engine.Winner(b) {
	case engine.MarkX:
		t.XWins++
		return
	case engine.MarkO:
		t.OWins++
		return
	}
	if engine.IsFull(b) {
		t.Draws++
		return
	}

	for idx, cell := range b {
		if cell != engine.MarkEmpty {
			continue
		}
		next := b
		next[idx] = turn
		enumerate(next, turn.Other(), t)
	}
}

// Outcome is the value of a position under perfect play by both sides.
type Outcome int

const (
	OWinning Outcome = -1
	Drawn    Outcome = 0
	XWinning Outcome = 1
)

func (o Outcome) String() string {
	switch o {
	case XWinning:
		return "X wins"
	case OWinning:
		return "O wins"
	}
	return "draw"
}

// perfectPlay evaluates a position by minimax. X prefers the highest
// outcome, O the lowest.
func perfectPlay(b engine.Board, turn engine.Mark) Outcome {
	switch engine.Winner(b) {
	case engine.MarkX:
		return XWinning
	case engine.MarkO:
		return OWinning
	}
	if engine.IsFull(b) {
		return Drawn
	}

	best := OWinning
	if turn == engine.MarkO {
		best = XWinning
	}
	for idx, cell := range b {
		if cell != engine.MarkEmpty {
			continue
		}
		next := b
		next[idx] = turn
		value := perfectPlay(next, turn.Other())
		if turn == engine.MarkX && value > best {
			best = value
		}
		if turn == engine.MarkO && value < best {
			best = value
		}
	}
	return best
}

func main() {
	var t Tally
	enumerate(engine.Board{}, engine.MarkX, &t)

	fmt.Println("=== Game tree ===")
	fmt.Printf("Complete games: %d\n", t.Total())
	fmt.Printf("X wins: %d (%.1f%%)\n", t.XWins, percent(t.XWins, t.Total()))
	fmt.Printf("O wins: %d (%.1f%%)\n", t.OWins, percent(t.OWins, t.Total()))
	fmt.Printf("Draws:  %d (%.1f%%)\n", t.Draws, percent(t.Draws, t.Total()))

	fmt.Println("\n=== Opening moves under perfect play ===")
	for idx := 0; idx < 9; idx++ {
		var b engine.Board
		b[idx] = engine.MarkX
		fmt.Printf("Cell %d: %s\n", idx, perfectPlay(b, engine.MarkO))
	}
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
