package store

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brachmann/zoysii/rules"
	"github.com/brachmann/zoysii/solver"
)

// DB wraps the SQLite board queue with thread-safe operations. Boards arrive
// from discovery or manual submission, get picked up by the batch solver, and
// keep their solution afterwards so repeat requests skip the search.
type DB struct {
	conn *sql.DB
	mu   sync.Mutex
}

// BoardRecord is one row of the boards table.
type BoardRecord struct {
	Board        string
	Source       string
	DiscoveredAt time.Time
	Solved       bool
	Found        bool
	MoveCount    int
	Moves        []int
	SolvedAt     time.Time
}

// OpenDB opens (and if needed initializes) the board database.
func OpenDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one writer.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS boards (
		board TEXT PRIMARY KEY,        -- textual board encoding
		source TEXT NOT NULL,          -- where the board came from
		discovered_at INTEGER NOT NULL,
		solved INTEGER NOT NULL DEFAULT 0,
		found INTEGER NOT NULL DEFAULT 0,
		move_count INTEGER,
		moves TEXT,                    -- comma-joined move names
		solved_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_boards_pending ON boards(solved, discovered_at);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// InsertBoard queues a board. Re-inserting a known board is a no-op; the
// return reports whether the board was new.
func (db *DB) InsertBoard(board, source string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	res, err := db.conn.Exec(
		`INSERT OR IGNORE INTO boards (board, source, discovered_at) VALUES (?, ?, ?)`,
		board, source, time.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("insert board: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert board: %w", err)
	}
	return n > 0, nil
}

// PendingBoards returns up to limit unsolved boards, oldest first.
func (db *DB) PendingBoards(limit int) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(
		`SELECT board FROM boards WHERE solved = 0 ORDER BY discovered_at, board LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending boards: %w", err)
	}
	defer rows.Close()

	var boards []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan pending board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// MarkSolved stores a solve outcome for a board; NotFound outcomes are
// recorded too so the board is not searched again.
func (db *DB) MarkSolved(board string, res solver.Result) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	moves := strings.Join(solver.MoveNames(res.Moves), ",")
	_, err := db.conn.Exec(
		`UPDATE boards SET solved = 1, found = ?, move_count = ?, moves = ?, solved_at = ? WHERE board = ?`,
		res.Found, len(res.Moves), moves, time.Now().Unix(), board,
	)
	if err != nil {
		return fmt.Errorf("mark solved: %w", err)
	}
	return nil
}

// Lookup returns the stored record for a board, if any.
func (db *DB) Lookup(board string) (*BoardRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	row := db.conn.QueryRow(
		`SELECT board, source, discovered_at, solved, found,
			COALESCE(move_count, 0), COALESCE(moves, ''), COALESCE(solved_at, 0)
		 FROM boards WHERE board = ?`, board)

	var rec BoardRecord
	var discoveredAt, solvedAt int64
	var moves string
	if err := row.Scan(&rec.Board, &rec.Source, &discoveredAt, &rec.Solved, &rec.Found,
		&rec.MoveCount, &moves, &solvedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup board: %w", err)
	}
	rec.DiscoveredAt = time.Unix(discoveredAt, 0)
	if solvedAt > 0 {
		rec.SolvedAt = time.Unix(solvedAt, 0)
	}
	rec.Moves = parseMoves(moves)
	return &rec, nil
}

// Stats returns total and solved board counts.
func (db *DB) Stats() (total, solved int, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	row := db.conn.QueryRow(`SELECT COUNT(*), COALESCE(SUM(solved), 0) FROM boards`)
	if err := row.Scan(&total, &solved); err != nil {
		return 0, 0, fmt.Errorf("stats: %w", err)
	}
	return total, solved, nil
}

func parseMoves(joined string) []int {
	if joined == "" {
		return nil
	}
	names := strings.Split(joined, ",")
	moves := make([]int, 0, len(names))
	for _, name := range names {
		for _, m := range rules.Moves {
			if rules.MoveName(m) == name {
				moves = append(moves, m)
				break
			}
		}
	}
	return moves
}
