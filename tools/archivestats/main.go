// Command archivestats summarises the Parquet solve archive with DuckDB:
// totals, a move-count histogram, and the boards that cost the search the
// most work.
//
// Usage:
//
//	archivestats -root data/solves [-root more/solves] [-hardest 10]
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	_ "github.com/duckdb/duckdb-go/v2"
)

type rootList []string

func (r *rootList) String() string { return strings.Join(*r, ",") }

func (r *rootList) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	var roots rootList
	flag.Var(&roots, "root", "Archive directory, repeatable")
	hardest := flag.Int("hardest", 10, "How many hardest boards to list")
	flag.Parse()

	if len(roots) == 0 {
		roots = rootList{"data/solves"}
	}

	db, err := openArchive(roots)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := printTotals(ctx, db); err != nil {
		log.Fatalf("Totals query failed: %v", err)
	}
	if err := printHistogram(ctx, db); err != nil {
		log.Fatalf("Histogram query failed: %v", err)
	}
	if err := printHardest(ctx, db, *hardest); err != nil {
		log.Fatalf("Hardest query failed: %v", err)
	}
}

// openArchive creates an in-memory DuckDB with a solves view over every
// parquet file under the roots, skipping in-flight files under tmp/.
func openArchive(roots []string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA threads=4")

	globs := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		glob := filepath.Join(root, "**", "*.parquet")
		globs = append(globs, "'"+strings.ReplaceAll(glob, "'", "''")+"'")
	}
	if len(globs) == 0 {
		_ = db.Close()
		return nil, fmt.Errorf("no archive roots")
	}

	sqlText := `CREATE OR REPLACE VIEW solves AS
		SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)
		WHERE NOT contains(filename, '/tmp/')`
	if _, err := db.Exec(sqlText); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func printTotals(ctx context.Context, db *sql.DB) error {
	var total, found, unsolved int64
	var avgMoves sql.NullFloat64
	err := db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			SUM(CASE WHEN found THEN 1 ELSE 0 END)::BIGINT,
			SUM(CASE WHEN found THEN 0 ELSE 1 END)::BIGINT,
			AVG(CASE WHEN found THEN move_count END)
		FROM solves`).Scan(&total, &found, &unsolved, &avgMoves)
	if err != nil {
		return err
	}

	fmt.Printf("Boards:      %d\n", total)
	fmt.Printf("Solved:      %d\n", found)
	fmt.Printf("No solution: %d\n", unsolved)
	if avgMoves.Valid {
		fmt.Printf("Avg moves:   %.2f\n", avgMoves.Float64)
	}
	fmt.Println()
	return nil
}

func printHistogram(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT move_count, COUNT(*)::BIGINT AS n
		FROM solves
		WHERE found
		GROUP BY move_count
		ORDER BY move_count ASC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	fmt.Println("Solution lengths:")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	var maxN int64
	type bucket struct {
		moves int32
		n     int64
	}
	var buckets []bucket
	for rows.Next() {
		var b bucket
		if err := rows.Scan(&b.moves, &b.n); err != nil {
			return err
		}
		if b.n > maxN {
			maxN = b.n
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, b := range buckets {
		bar := strings.Repeat("#", int(b.n*40/maxN))
		fmt.Fprintf(w, "%d\t%d\t%s\n", b.moves, b.n, bar)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

func printHardest(ctx context.Context, db *sql.DB, limit int) error {
	rows, err := db.QueryContext(ctx, `SELECT board, found, move_count, expanded, duration_ms
		FROM solves
		ORDER BY expanded DESC
		LIMIT ?`, limit)
	if err != nil {
		return err
	}
	defer rows.Close()

	fmt.Printf("Hardest %d boards by states expanded:\n", limit)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "board\tfound\tmoves\texpanded\tms")
	for rows.Next() {
		var board string
		var found bool
		var moveCount int32
		var expanded, durationMs int64
		if err := rows.Scan(&board, &found, &moveCount, &expanded, &durationMs); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%t\t%d\t%d\t%d\n", board, found, moveCount, expanded, durationMs)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return w.Flush()
}
