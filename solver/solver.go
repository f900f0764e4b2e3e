// Package solver finds shortest Zoysii solutions with a bounded
// breadth-first search over board states.
package solver

import (
	"context"

	"github.com/brachmann/zoysii/game"
	"github.com/brachmann/zoysii/rules"
)

// MaxMoves is the hard ceiling on solution length. Searches never return
// longer solutions; boards needing more moves come back as not found.
const MaxMoves = 29

// Options configures one search.
type Options struct {
	// MaxMoves bounds the solution length. Zero or negative means MaxMoves;
	// larger values are clamped to MaxMoves.
	MaxMoves int

	// OnLayer, if set, is called after each fully expanded BFS layer. Useful
	// for progress reporting; the callback must not retain the Layer.
	OnLayer func(Layer)
}

// Layer describes one completed BFS depth layer.
type Layer struct {
	Depth    int // depth of the layer just expanded, 0 = initial board
	Frontier int // states queued for the next layer
	Visited  int // total states discovered so far
}

// Stats summarizes the work one search performed.
type Stats struct {
	Expanded int // states whose successors were generated
	Visited  int // distinct states discovered
	Depth    int // deepest layer generated
}

// Result is the outcome of one search. Found distinguishes a solution from
// the valid negative outcome of an exhausted or depth-capped search; it is
// not an error.
type Result struct {
	Found bool
	Moves []int
	Stats Stats
}

// MoveNames renders a solution's moves as display names.
func MoveNames(moves []int) []string {
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = rules.MoveName(m)
	}
	return names
}

// step records how a state was first reached: the state it was generated
// from and the move that produced it. A negative move marks the root.
type step struct {
	parent game.Board
	move   int8
}

// Solve searches breadth-first from b for a shortest winning move sequence.
//
// Layers are processed strictly in depth order and moves are tried in the
// fixed Up, Down, Left, Right order, so the first won state generated closes
// a shortest solution and ties break deterministically: running Solve twice
// on the same board yields the identical sequence.
//
// Successors that are illegal, dead (IsLost) or already discovered are
// pruned. The predecessor map doubles as the visited set: BFS discovers every
// state first via a shortest path, so the recorded parent chain is the answer
// and no state is ever expanded twice.
//
// All search state is local to the call. ctx is checked once per layer;
// cancellation is the only error.
func Solve(ctx context.Context, b game.Board, opts Options) (Result, error) {
	maxMoves := opts.MaxMoves
	if maxMoves <= 0 || maxMoves > MaxMoves {
		maxMoves = MaxMoves
	}

	var res Result
	if rules.IsWon(b) {
		res.Found = true
		res.Moves = []int{}
		res.Stats.Visited = 1
		return res, nil
	}

	visited := map[game.Board]step{b: {move: -1}}
	frontier := []game.Board{b}

	for depth := 0; len(frontier) > 0 && depth < maxMoves; depth++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		var next []game.Board
		for _, cur := range frontier {
			res.Stats.Expanded++
			for _, move := range rules.Moves {
				nb, ok := rules.Apply(cur, move)
				if !ok {
					continue
				}
				if rules.IsLost(nb) {
					continue
				}
				if _, seen := visited[nb]; seen {
					continue
				}
				if rules.IsWon(nb) {
					res.Found = true
					res.Moves = reconstruct(visited, cur, move)
					res.Stats.Visited = len(visited) + 1
					res.Stats.Depth = depth + 1
					return res, nil
				}
				if depth+1 == maxMoves {
					// Enqueueing would exceed the bound on the next layer.
					continue
				}
				visited[nb] = step{parent: cur, move: int8(move)}
				next = append(next, nb)
			}
		}

		res.Stats.Visited = len(visited)
		res.Stats.Depth = depth + 1
		if opts.OnLayer != nil {
			opts.OnLayer(Layer{Depth: depth, Frontier: len(next), Visited: len(visited)})
		}
		frontier = next
	}

	return res, nil
}

// reconstruct walks the predecessor chain back from the state that generated
// the winning move and returns the full move sequence in play order.
func reconstruct(visited map[game.Board]step, last game.Board, winning int) []int {
	moves := []int{winning}
	for cur := last; ; {
		s := visited[cur]
		if s.move < 0 {
			break
		}
		moves = append(moves, int(s.move))
		cur = s.parent
	}
	for i, j := 0, len(moves)-1; i < j; i, j = i+1, j-1 {
		moves[i], moves[j] = moves[j], moves[i]
	}
	return moves
}
