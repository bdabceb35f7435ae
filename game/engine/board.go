package engine

// Mark is a single cell value: X, O, or empty.
type Mark string

const (
	MarkX     Mark = "X"
	MarkO     Mark = "O"
	MarkEmpty Mark = ""
)

// Other returns the opposing player's mark. It is only meaningful for
// MarkX and MarkO; any other value maps to MarkEmpty.
func (m Mark) Other() Mark {
	switch m {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	}
	return MarkEmpty
}

// Board is the 3x3 grid in row-major order.
type Board [9]Mark

// winningLines lists every line of three cells. The order is fixed: rows,
// then columns, then diagonals. WinningLine reports the first match in this
// order, so the order must not change.
var winningLines = [8][3]int{
	{0, 1, 2}, // top row
	{3, 4, 5}, // middle row
	{6, 7, 8}, // bottom row
	{0, 3, 6}, // left column
	{1, 4, 7}, // middle column
	{2, 5, 8}, // right column
	{0, 4, 8}, // diagonal
	{2, 4, 6}, // anti-diagonal
}

// ValidIndex reports whether idx addresses a cell on the board.
func ValidIndex(idx int) bool {
	return idx >= 0 && idx < len(Board{})
}

// WinningLine returns the indices of the first completed line of three
// equal non-empty marks, scanning rows, then columns, then diagonals.
// The second return value is false when no line is complete.
func WinningLine(b Board) ([3]int, bool) {
	for _, line := range winningLines {
		a, mid, c := line[0], line[1], line[2]
		if b[a] != MarkEmpty && b[a] == b[mid] && b[mid] == b[c] {
			return line, true
		}
	}
	return [3]int{}, false
}

// Winner returns the mark holding a completed line, or MarkEmpty.
func Winner(b Board) Mark {
	if line, ok := WinningLine(b); ok {
		return b[line[0]]
	}
	return MarkEmpty
}

// IsFull reports whether every cell is occupied.
func IsFull(b Board) bool {
	for _, cell := range b {
		if cell == MarkEmpty {
			return false
		}
	}
	return true
}

// IsDraw reports a full board with no completed line.
func IsDraw(b Board) bool {
	if _, ok := WinningLine(b); ok {
		return false
	}
	return IsFull(b)
}

// IsOver reports whether the game on this board has ended, either by a
// completed line or by a full board.
func IsOver(b Board) bool {
	if _, ok := WinningLine(b); ok {
		return true
	}
	return IsFull(b)
}
