// Package routing computes shortest cursor paths over occupancy masks.
//
// A MarkBoard is a 16-bit mask of occupied cells. ActionTowards answers "what
// is the first move of a shortest cursor path from here to that occupied
// cell, travelling only over empty cells" (the game's tap-to-move). Paths are
// derived from per-destination action boards built by BFS outward from the
// destination; results are cached per canonical mask, where canonical means
// the minimal image under the board's eight symmetries.
package routing

import (
	"sort"
	"sync"

	"github.com/brachmann/zoysii/game"
	"github.com/brachmann/zoysii/rules"
)

// MarkBoard is a bitmask with one bit per board cell, row-major.
type MarkBoard uint16

// FromBoard masks the non-zero cells of a board.
func FromBoard(b game.Board) MarkBoard {
	var m MarkBoard
	for i, v := range b.Cells {
		if v != 0 {
			m |= 1 << i
		}
	}
	return m
}

// Marked reports whether the cell at p is set.
func (m MarkBoard) Marked(p game.Point) bool {
	return m>>p.Index()&1 != 0
}

// Mark sets the cell at p.
func (m *MarkBoard) Mark(p game.Point) {
	*m |= 1 << p.Index()
}

// Unmark clears the cell at p.
func (m *MarkBoard) Unmark(p game.Point) {
	*m &^= 1 << p.Index()
}

type transform int

const (
	mirror transform = iota // flip rows
	deg90                   // counter-clockwise quarter turn
	deg180
	deg270 // clockwise quarter turn
)

var transforms = [4]transform{mirror, deg90, deg180, deg270}

func (t transform) reverse() transform {
	switch t {
	case deg90:
		return deg270
	case deg270:
		return deg90
	default:
		return t
	}
}

// sym is one of the eight board symmetries: an optional row mirror followed
// by a transform. {mirror, true} composes to the identity.
type sym struct {
	t      transform
	mirror bool
}

func allSyms() [8]sym {
	var out [8]sym
	i := 0
	for _, t := range transforms {
		for _, m := range [2]bool{true, false} {
			out[i] = sym{t: t, mirror: m}
			i++
		}
	}
	return out
}

func transformIndex(idx int, t transform) int {
	r, c := idx/game.N, idx%game.N
	switch t {
	case mirror:
		r = game.N - 1 - r
	case deg90:
		r, c = game.N-1-c, r
	case deg270:
		r, c = c, game.N-1-r
	default:
		r, c = game.N-1-r, game.N-1-c
	}
	return r*game.N + c
}

func symIndex(idx int, s sym) int {
	if s.t == mirror && s.mirror {
		return idx
	}
	if s.mirror {
		idx = transformIndex(idx, mirror)
	}
	return transformIndex(idx, s.t)
}

func reverseSymIndex(idx int, s sym) int {
	if s.t == mirror && s.mirror {
		return idx
	}
	idx = transformIndex(idx, s.t.reverse())
	if s.mirror {
		idx = transformIndex(idx, mirror)
	}
	return idx
}

func transformMove(move int, t transform) int {
	d := rules.Offset(move)
	dr, dc := d.Y, d.X
	switch t {
	case mirror:
		dr = -dr
	case deg90:
		dr, dc = -dc, dr
	case deg270:
		dr, dc = dc, -dr
	default:
		dr, dc = -dr, -dc
	}
	for _, m := range rules.Moves {
		if o := rules.Offset(m); o.Y == dr && o.X == dc {
			return m
		}
	}
	panic("unreachable")
}

// reverseSymMove maps a move from canonical space back to the original board.
func reverseSymMove(move int, s sym) int {
	if s.t == mirror && s.mirror {
		return move
	}
	move = transformMove(move, s.t.reverse())
	if s.mirror {
		move = transformMove(move, mirror)
	}
	return move
}

func (m MarkBoard) transform(t transform) MarkBoard {
	var out MarkBoard
	for i := 0; i < game.CellCount; i++ {
		if m>>i&1 != 0 {
			out |= 1 << transformIndex(i, t)
		}
	}
	return out
}

func (m MarkBoard) symmetry(s sym) MarkBoard {
	if s.t == mirror && s.mirror {
		return m
	}
	if s.mirror {
		m = m.transform(mirror)
	}
	return m.transform(s.t)
}

// canonical returns the minimal symmetric image of m and the symmetry that
// produces it. Ties keep the earliest symmetry, so the result is stable.
func (m MarkBoard) canonical() (sym, MarkBoard) {
	syms := allSyms()
	best := syms[0]
	bestMask := m.symmetry(best)
	for _, s := range syms[1:] {
		if v := m.symmetry(s); v < bestMask {
			best, bestMask = s, v
		}
	}
	return best, bestMask
}

func reverseMove(move int) int {
	switch move {
	case rules.MoveUp:
		return rules.MoveDown
	case rules.MoveDown:
		return rules.MoveUp
	case rules.MoveLeft:
		return rules.MoveRight
	default:
		return rules.MoveLeft
	}
}

func neighborIndex(idx, move int) int {
	p := game.PointAt(idx).Add(rules.Offset(move))
	if !p.Inside() {
		return -1
	}
	return p.Index()
}

// actionBoard records, for one destination cell on one mask, the move each
// empty cell should play to walk a shortest path toward the destination.
// Moves are packed two bits per cell; starts masks the cells with a path.
type actionBoard struct {
	end    int
	acts   uint32
	starts MarkBoard
}

// buildActionBoard grows outward from end over empty cells. Each cell keeps
// the first move discovered for it, which fixes ties deterministically by the
// Up, Down, Left, Right move order.
func buildActionBoard(marks MarkBoard, end int) actionBoard {
	ab := actionBoard{end: end}
	points := []int{end}
	for len(points) > 0 {
		var next []int
		for _, move := range rules.Moves {
			for _, pt := range points {
				np := neighborIndex(pt, move)
				if np < 0 || marks>>np&1 != 0 || ab.starts>>np&1 != 0 {
					continue
				}
				ab.acts |= uint32(reverseMove(move)) << (np * 2)
				ab.starts |= 1 << np
				next = append(next, np)
			}
		}
		points = next
	}
	return ab
}

func (ab actionBoard) moveAt(idx int) (int, bool) {
	if ab.starts>>idx&1 == 0 {
		return 0, false
	}
	return int(ab.acts >> (idx * 2) & 0x3), true
}

// actionBoardMap holds the action boards of every valid destination on one
// canonical mask: marked cells adjacent to at least one empty cell.
type actionBoardMap map[int]actionBoard

var (
	cacheMu sync.Mutex
	cache   = map[MarkBoard]actionBoardMap{}
)

func actionBoardsFor(canonMarks MarkBoard) actionBoardMap {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if abm, ok := cache[canonMarks]; ok {
		return abm
	}
	abm := actionBoardMap{}
	for idx := 0; idx < game.CellCount; idx++ {
		if canonMarks>>idx&1 == 0 {
			continue
		}
		reachable := false
		for _, move := range rules.Moves {
			if np := neighborIndex(idx, move); np >= 0 && canonMarks>>np&1 == 0 {
				reachable = true
				break
			}
		}
		if reachable {
			abm[idx] = buildActionBoard(canonMarks, idx)
		}
	}
	cache[canonMarks] = abm
	return abm
}

// ActionTowards returns the first move of a shortest cursor path from `from`
// to the marked cell `to`, walking only over unmarked cells. The second
// return is false when `to` is not a reachable destination from `from`.
func ActionTowards(marks MarkBoard, from, to game.Point) (int, bool) {
	s, canon := marks.canonical()
	abm := actionBoardsFor(canon)
	ab, ok := abm[symIndex(to.Index(), s)]
	if !ok {
		return 0, false
	}
	move, ok := ab.moveAt(symIndex(from.Index(), s))
	if !ok {
		return 0, false
	}
	return reverseSymMove(move, s), true
}

// ReachableEnds returns every marked cell reachable from `from`, in cell
// index order.
func ReachableEnds(marks MarkBoard, from game.Point) []game.Point {
	s, canon := marks.canonical()
	abm := actionBoardsFor(canon)
	fromIdx := symIndex(from.Index(), s)
	var idxs []int
	for end, ab := range abm {
		if ab.starts>>fromIdx&1 != 0 {
			idxs = append(idxs, reverseSymIndex(end, s))
		}
	}
	sort.Ints(idxs)
	ends := make([]game.Point, len(idxs))
	for i, idx := range idxs {
		ends[i] = game.PointAt(idx)
	}
	return ends
}
