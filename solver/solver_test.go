package solver

import (
	"context"
	"strings"
	"testing"

	"github.com/brachmann/zoysii/game"
	"github.com/brachmann/zoysii/rules"
)

func mustParse(t *testing.T, s string) game.Board {
	t.Helper()
	b, err := game.ParseBoard(s)
	if err != nil {
		t.Fatalf("ParseBoard(%q): %v", s, err)
	}
	return b
}

func joinMoves(moves []int) string {
	return strings.Join(MoveNames(moves), ",")
}

// replay applies a solution to the board and checks it actually wins.
func replay(t *testing.T, b game.Board, moves []int) {
	t.Helper()
	for i, m := range moves {
		var ok bool
		b, ok = rules.Apply(b, m)
		if !ok {
			t.Fatalf("solution move %d (%s) is illegal", i, rules.MoveName(m))
		}
	}
	if !rules.IsWon(b) {
		t.Fatalf("solution does not win; final board %s", b)
	}
}

func TestSolve_AlreadyWon(t *testing.T) {
	res, err := Solve(context.Background(), game.Board{}, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !res.Found {
		t.Fatal("an already-won board must report found")
	}
	if len(res.Moves) != 0 || res.Moves == nil {
		t.Fatalf("want zero-move solution, got %v", res.Moves)
	}
}

func TestSolve_OneMove(t *testing.T) {
	b := mustParse(t, "5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0")
	res, err := Solve(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !res.Found || joinMoves(res.Moves) != "Right" {
		t.Fatalf("got found=%v moves=%s, want Right", res.Found, joinMoves(res.Moves))
	}
	replay(t, b, res.Moves)
}

func TestSolve_DeadBoard(t *testing.T) {
	// A lone cell can never be cleared; every legal move leads to a lost
	// state, so only the root is ever expanded.
	b := mustParse(t, "1 0 0 0|0 0 0 0|0 0 0 0|0 0 0 0")
	res, err := Solve(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Found {
		t.Fatalf("dead board must not be solvable, got %s", joinMoves(res.Moves))
	}
	if res.Stats.Expanded != 1 || res.Stats.Visited != 1 {
		t.Fatalf("expected only the root expanded, stats=%+v", res.Stats)
	}
}

func TestSolve_ShortestThirteen(t *testing.T) {
	b := mustParse(t, "18 9 6 0|0 9 3 0|33 18 18 3|0 0 15 0")
	res, err := Solve(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !res.Found {
		t.Fatal("board should be solvable")
	}
	want := "Right,Down,Right,Down,Down,Up,Left,Left,Up,Down,Right,Right,Up"
	if got := joinMoves(res.Moves); got != want {
		t.Fatalf("solution\n got %s\nwant %s", got, want)
	}
	replay(t, b, res.Moves)
}

func TestSolve_BoundRespected(t *testing.T) {
	b := mustParse(t, "18 9 6 0|0 9 3 0|33 18 18 3|0 0 15 0")

	res, err := Solve(context.Background(), b, Options{MaxMoves: 12})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Found {
		t.Fatalf("13-move board must be unsolvable within 12 moves, got %s", joinMoves(res.Moves))
	}
	// Exhausted searches pop each discovered state at most once.
	if res.Stats.Expanded > res.Stats.Visited {
		t.Fatalf("expanded %d states but only discovered %d", res.Stats.Expanded, res.Stats.Visited)
	}

	// A solution of exactly the bound is still found.
	res, err = Solve(context.Background(), b, Options{MaxMoves: 13})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !res.Found || len(res.Moves) != 13 {
		t.Fatalf("want a 13-move solution at bound 13, got found=%v len=%d", res.Found, len(res.Moves))
	}
}

func TestSolve_Seventeen(t *testing.T) {
	if testing.Short() {
		t.Skip("long search")
	}
	b := mustParse(t, "18 9 6 36|0 9 3 0|33 18 18 3|36 18 15 9")
	res, err := Solve(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	want := "Down,Up,Right,Right,Down,Up,Left,Down,Down,Down,Left,Up,Right,Right,Down,Right,Up"
	if got := joinMoves(res.Moves); !res.Found || got != want {
		t.Fatalf("solution\n got %s\nwant %s", got, want)
	}
	replay(t, b, res.Moves)
}

func TestSolve_Idempotent(t *testing.T) {
	b := mustParse(t, "18 9 6 0|0 9 3 0|33 18 18 3|0 0 15 0")
	first, err := Solve(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	second, err := Solve(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if joinMoves(first.Moves) != joinMoves(second.Moves) {
		t.Fatalf("solver is not deterministic:\n first %s\nsecond %s",
			joinMoves(first.Moves), joinMoves(second.Moves))
	}
	if first.Stats != second.Stats {
		t.Fatalf("stats differ between runs: %+v vs %+v", first.Stats, second.Stats)
	}
}

func TestSolve_OnLayer(t *testing.T) {
	b := mustParse(t, "18 9 6 0|0 9 3 0|33 18 18 3|0 0 15 0")
	var layers []Layer
	_, err := Solve(context.Background(), b, Options{OnLayer: func(l Layer) {
		layers = append(layers, l)
	}})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	// The winning state is generated during layer 12, before its callback.
	if len(layers) != 12 {
		t.Fatalf("got %d layer callbacks, want 12", len(layers))
	}
	for i, l := range layers {
		if l.Depth != i {
			t.Fatalf("layer %d reported depth %d", i, l.Depth)
		}
	}
}

func TestSolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := mustParse(t, "18 9 6 0|0 9 3 0|33 18 18 3|0 0 15 0")
	if _, err := Solve(ctx, b, Options{}); err == nil {
		t.Fatal("cancelled context should surface an error")
	}
}

func TestMoveNames(t *testing.T) {
	got := MoveNames([]int{rules.MoveUp, rules.MoveRight})
	if len(got) != 2 || got[0] != "Up" || got[1] != "Right" {
		t.Fatalf("MoveNames=%v", got)
	}
}
