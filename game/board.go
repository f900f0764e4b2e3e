// Package game defines the core Zoysii board state.
//
// A Board is a value type: 16 cell values plus the cursor position. Moves
// never mutate a Board in place; the rules package returns new values. Boards
// are comparable, so they can key the solver's visited set directly.
package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// N is the board side length.
	N = 4
	// CellCount is the total number of cells.
	CellCount = N * N
)

// Point is a board coordinate. (0,0) is the top-left cell; Y grows downward,
// matching the row order of the textual board encoding.
type Point struct {
	X int
	Y int
}

// Inside reports whether the point is on the board.
func (p Point) Inside() bool {
	return p.X >= 0 && p.X < N && p.Y >= 0 && p.Y < N
}

// Index returns the row-major cell index.
func (p Point) Index() int {
	return p.Y*N + p.X
}

// Add returns p shifted by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// PointAt returns the Point for a row-major cell index.
func PointAt(idx int) Point {
	return Point{X: idx % N, Y: idx / N}
}

// Board is one Zoysii configuration. Cells are laid out row-major; Pos is the
// cursor's cell index. Two boards with equal cells but different cursor
// positions are distinct states, and the search treats them so.
type Board struct {
	Cells [CellCount]uint8
	Pos   uint8
}

// Cursor returns the cursor position as a Point.
func (b Board) Cursor() Point {
	return PointAt(int(b.Pos))
}

// Cell returns the value at p.
func (b Board) Cell(p Point) uint8 {
	return b.Cells[p.Index()]
}

// SetCell sets the value at p. The rules package calls this on its own copy;
// shared Board values are never mutated.
func (b *Board) SetCell(p Point, v uint8) {
	b.Cells[p.Index()] = v
}

// ErrInvalidBoard reports a board string that does not decode into a 4x4 grid
// of values in 0..255.
var ErrInvalidBoard = errors.New("invalid board")

// ParseBoard decodes the textual board encoding: rows separated by '|', cells
// within a row separated by whitespace. The cursor starts at the top-left.
//
// Example: "18 9 6 0|0 9 3 0|33 18 18 3|0 0 15 0"
func ParseBoard(s string) (Board, error) {
	var b Board
	rows := strings.Split(s, "|")
	if len(rows) != N {
		return Board{}, fmt.Errorf("%w: want %d rows, got %d", ErrInvalidBoard, N, len(rows))
	}
	for y, row := range rows {
		cells := strings.Fields(row)
		if len(cells) != N {
			return Board{}, fmt.Errorf("%w: row %d: want %d cells, got %d", ErrInvalidBoard, y, N, len(cells))
		}
		for x, cell := range cells {
			v, err := strconv.ParseUint(cell, 10, 8)
			if err != nil {
				return Board{}, fmt.Errorf("%w: row %d: cell %q out of range", ErrInvalidBoard, y, cell)
			}
			b.Cells[y*N+x] = uint8(v)
		}
	}
	return b, nil
}

// String renders the board in the same encoding ParseBoard accepts. The
// cursor position is not part of the encoding.
func (b Board) String() string {
	var sb strings.Builder
	for y := 0; y < N; y++ {
		if y > 0 {
			sb.WriteByte('|')
		}
		for x := 0; x < N; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(int(b.Cells[y*N+x])))
		}
	}
	return sb.String()
}
