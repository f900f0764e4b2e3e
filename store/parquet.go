// Package store persists solve results: a Parquet archive for analysis and a
// SQLite queue/cache for boards awaiting or holding solutions.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brachmann/zoysii/rules"
	"github.com/brachmann/zoysii/solver"
)

// SolveRow is one archived solve outcome.
//
// Board is the textual board encoding. Moves is the comma-joined move names
// of the solution, empty when Found is false. Expanded/Visited record how
// much work the search performed, which is the interesting signal for
// "hardest board" queries.
type SolveRow struct {
	Board      string `parquet:"board"`
	Found      bool   `parquet:"found"`
	MoveCount  int32  `parquet:"move_count"`
	Moves      string `parquet:"moves"`
	MaxMoves   int32  `parquet:"max_moves"`
	Expanded   int64  `parquet:"expanded"`
	Visited    int64  `parquet:"visited"`
	DurationMs int64  `parquet:"duration_ms"`
	SolvedAtNs int64  `parquet:"solved_at_ns"`
	Source     string `parquet:"source,dict"`
}

// NewSolveRow builds a row from a solver result.
func NewSolveRow(board string, res solver.Result, maxMoves int, took time.Duration, source string) SolveRow {
	moves := ""
	if res.Found {
		for i, m := range res.Moves {
			if i > 0 {
				moves += ","
			}
			moves += rules.MoveName(m)
		}
	}
	return SolveRow{
		Board:      board,
		Found:      res.Found,
		MoveCount:  int32(len(res.Moves)),
		Moves:      moves,
		MaxMoves:   int32(maxMoves),
		Expanded:   int64(res.Stats.Expanded),
		Visited:    int64(res.Stats.Visited),
		DurationMs: took.Milliseconds(),
		SolvedAtNs: time.Now().UnixNano(),
		Source:     source,
	}
}

// WriteSolveParquet writes rows to outPath, creating parent directories and
// renaming a temp file into place so readers never see a partial file.
func WriteSolveParquet(outPath string, rows []SolveRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "solve_row_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// WriteBatchParquetAtomic writes a timestamp-named Parquet file into
// outDir/tmp and atomically moves it into outDir. The returned path is the
// final file path.
func WriteBatchParquetAtomic(outDir string, rows []SolveRow) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "solve_row_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// ReadSolveParquet loads every row of one archive file.
func ReadSolveParquet(path string) ([]SolveRow, error) {
	rows, err := parquet.ReadFile[SolveRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}
