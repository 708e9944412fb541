// Package game holds the pure tic-tac-toe rules: marks, the 3x3 board and
// the win/draw/turn calculations. It has no knowledge of rooms or transport.
package game

// Mark is one side's symbol. The zero value marks an empty cell.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Other returns the opposing mark.
func Other(m Mark) Mark {
	if m == X {
		return O
	}
	return X
}

// Board is a 3x3 grid in row-major order.
type Board [9]Mark

// Scores counts finished rounds per outcome.
type Scores struct {
	X    int `json:"X"`
	O    int `json:"O"`
	Draw int `json:"Draw"`
}

// The eight winning lines: rows, columns, diagonals. Order matters, the
// first completed line in this order is the one reported.
var lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Winner reports the mark holding a completed line and the cells forming it.
func Winner(b Board) (Mark, [3]int, bool) {
	for _, l := range lines {
		if b[l[0]] != Empty && b[l[0]] == b[l[1]] && b[l[0]] == b[l[2]] {
			return b[l[0]], l, true
		}
	}
	return Empty, [3]int{}, false
}

// IsDraw reports whether every cell is filled and nobody won.
func IsDraw(b Board) bool {
	if _, _, ok := Winner(b); ok {
		return false
	}
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// SideToMove returns the mark that plays the given ply. Ply 0 belongs to
// first and the marks alternate from there, so the rule stays correct no
// matter how the current ply was reached.
func SideToMove(first Mark, ply int) Mark {
	if ply%2 == 0 {
		return first
	}
	return Other(first)
}
