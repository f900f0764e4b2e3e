package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brachmann/zoysii/game"
	"github.com/brachmann/zoysii/solver"
)

func solveFixture(t *testing.T) solver.Result {
	t.Helper()
	b, err := game.ParseBoard("5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0")
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	res, err := solver.Solve(context.Background(), b, solver.Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return res
}

func TestSolveParquet_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	res := solveFixture(t)
	rows := []SolveRow{
		NewSolveRow("5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0", res, solver.MaxMoves, 3*time.Millisecond, "test"),
		NewSolveRow("1 0 0 0|0 0 0 0|0 0 0 0|0 0 0 0", solver.Result{}, solver.MaxMoves, time.Millisecond, "test"),
	}

	path := filepath.Join(dir, "solves.parquet")
	if err := WriteSolveParquet(path, rows); err != nil {
		t.Fatalf("WriteSolveParquet: %v", err)
	}

	got, err := ReadSolveParquet(path)
	if err != nil {
		t.Fatalf("ReadSolveParquet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows=%d want 2", len(got))
	}
	if !got[0].Found || got[0].Moves != "Right" || got[0].MoveCount != 1 {
		t.Fatalf("row 0 = %+v", got[0])
	}
	if got[1].Found || got[1].Moves != "" {
		t.Fatalf("row 1 = %+v", got[1])
	}
}

func TestWriteBatchParquetAtomic(t *testing.T) {
	dir := t.TempDir()
	res := solveFixture(t)
	rows := []SolveRow{NewSolveRow("5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0", res, 20, time.Millisecond, "test")}

	path, err := WriteBatchParquetAtomic(dir, rows)
	if err != nil {
		t.Fatalf("WriteBatchParquetAtomic: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("batch written outside outDir: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("batch file missing: %v", err)
	}
}

func TestBatchWriter(t *testing.T) {
	dir := t.TempDir()
	res := solveFixture(t)

	w, err := NewBatchWriter(dir)
	if err != nil {
		t.Fatalf("NewBatchWriter: %v", err)
	}
	row := NewSolveRow("5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0", res, 20, time.Millisecond, "test")
	if err := w.WriteRows([]SolveRow{row, row}); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	if w.BufferedRows() != 2 {
		t.Fatalf("BufferedRows=%d want 2", w.BufferedRows())
	}

	outPath, rows, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if rows != 2 {
		t.Fatalf("finalized rows=%d want 2", rows)
	}
	got, err := ReadSolveParquet(outPath)
	if err != nil {
		t.Fatalf("ReadSolveParquet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows=%d want 2", len(got))
	}
}

func TestBatchWriter_EmptyBatchDiscarded(t *testing.T) {
	dir := t.TempDir()
	w, err := NewBatchWriter(dir)
	if err != nil {
		t.Fatalf("NewBatchWriter: %v", err)
	}
	outPath, rows, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if outPath != "" || rows != 0 {
		t.Fatalf("empty batch should be discarded, got path=%q rows=%d", outPath, rows)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "tmp" {
			t.Fatalf("unexpected file left behind: %s", e.Name())
		}
	}
}

func TestDB_QueueLifecycle(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "boards.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()

	const board = "5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0"
	inserted, err := db.InsertBoard(board, "test")
	if err != nil {
		t.Fatalf("InsertBoard: %v", err)
	}
	if !inserted {
		t.Fatal("first insert should report new")
	}
	inserted, err = db.InsertBoard(board, "test")
	if err != nil {
		t.Fatalf("InsertBoard: %v", err)
	}
	if inserted {
		t.Fatal("duplicate insert should be ignored")
	}

	pending, err := db.PendingBoards(10)
	if err != nil {
		t.Fatalf("PendingBoards: %v", err)
	}
	if len(pending) != 1 || pending[0] != board {
		t.Fatalf("pending=%v", pending)
	}

	res := solveFixture(t)
	if err := db.MarkSolved(board, res); err != nil {
		t.Fatalf("MarkSolved: %v", err)
	}

	pending, err = db.PendingBoards(10)
	if err != nil {
		t.Fatalf("PendingBoards: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("solved board still pending: %v", pending)
	}

	rec, err := db.Lookup(board)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec == nil || !rec.Solved || !rec.Found || rec.MoveCount != 1 {
		t.Fatalf("record=%+v", rec)
	}
	if len(rec.Moves) != 1 || rec.Moves[0] != res.Moves[0] {
		t.Fatalf("moves=%v want %v", rec.Moves, res.Moves)
	}

	rec, err = db.Lookup("0 0 0 0|0 0 0 0|0 0 0 0|0 0 0 1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec != nil {
		t.Fatalf("unknown board should return nil, got %+v", rec)
	}

	total, solved, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if total != 1 || solved != 1 {
		t.Fatalf("stats total=%d solved=%d", total, solved)
	}
}
