// Package rules implements the Zoysii move rules as a closed set of pure
// functions over game.Board values. There is exactly one rule variant, so no
// interface sits between the rules and the solver.
package rules

import (
	"github.com/brachmann/zoysii/game"
)

const (
	MoveUp    = 0
	MoveDown  = 1
	MoveLeft  = 2
	MoveRight = 3
)

// Moves lists all moves in the fixed order the solver tries them. The order
// is the tie-break among equally short solutions, so it must not change.
var Moves = [4]int{MoveUp, MoveDown, MoveLeft, MoveRight}

var moveNames = [4]string{"Up", "Down", "Left", "Right"}

// MoveName returns the display name of a move.
func MoveName(move int) string {
	if move < 0 || move >= len(moveNames) {
		return "?"
	}
	return moveNames[move]
}

// Offset returns the cursor delta of a move.
func Offset(move int) game.Point {
	switch move {
	case MoveUp:
		return game.Point{X: 0, Y: -1}
	case MoveDown:
		return game.Point{X: 0, Y: 1}
	case MoveLeft:
		return game.Point{X: -1, Y: 0}
	default:
		return game.Point{X: 1, Y: 0}
	}
}

// diff is the cell-merge rule. Equal values annihilate; values further than
// one apart subtract; adjacent values add.
func diff(v, origin uint8) uint8 {
	if v == origin {
		return 0
	}
	lo, hi := v, origin
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi > lo+1 {
		return hi - lo
	}
	return hi + lo
}

// Apply plays one move on b and returns the resulting board. The move is
// legal iff the cursor stays on the board; the second return is false and the
// board unchanged otherwise.
//
// On a legal move the cursor advances one cell. If the cell under the old
// cursor is non-zero, every non-zero cell along the ray it points at is
// replaced by its diff with that origin value, and the origin cell clears
// when at least one ray cell cleared. A legal move with an empty origin cell
// still produces a new state: the cursor moved.
func Apply(b game.Board, move int) (game.Board, bool) {
	dir := Offset(move)
	cur := b.Cursor()
	next := cur.Add(dir)
	if !next.Inside() {
		return b, false
	}

	nb := b
	origin := nb.Cell(cur)
	if origin > 0 {
		clears := 0
		for p := next; p.Inside(); p = p.Add(dir) {
			v := nb.Cell(p)
			if v == 0 {
				continue
			}
			nv := diff(v, origin)
			if nv == 0 {
				clears++
			}
			nb.SetCell(p, nv)
		}
		if clears > 0 {
			nb.SetCell(cur, 0)
		}
	}
	nb.Pos = uint8(next.Index())
	return nb, true
}

// LegalMoves returns the legal moves for b in the fixed Up, Down, Left,
// Right order.
func LegalMoves(b game.Board) []int {
	moves := []int{}
	for _, m := range Moves {
		if next := b.Cursor().Add(Offset(m)); next.Inside() {
			moves = append(moves, m)
		}
	}
	return moves
}

// IsWon reports whether every cell is zero.
func IsWon(b game.Board) bool {
	for _, v := range b.Cells {
		if v != 0 {
			return false
		}
	}
	return true
}

// IsLost reports whether the board is dead: some row holds exactly one
// non-zero cell whose column also holds exactly one non-zero cell. Such a
// cell can never be cleared, so no sequence of moves wins from here.
func IsLost(b game.Board) bool {
	for y := 0; y < game.N; y++ {
		col := -1
		rowCount := 0
		for x := 0; x < game.N; x++ {
			if b.Cells[y*game.N+x] != 0 {
				col = x
				rowCount++
			}
		}
		if rowCount != 1 {
			continue
		}
		colCount := 0
		for yy := 0; yy < game.N; yy++ {
			if b.Cells[yy*game.N+col] != 0 {
				colCount++
			}
		}
		if colCount == 1 {
			return true
		}
	}
	return false
}
