// Command zoysii-batch solves many boards concurrently and archives the
// results. Boards come from a line-delimited file and/or the pending queue of
// the board database; outcomes stream to Parquet batches and a live terminal
// dashboard.
//
// Each search is single-threaded; parallelism is across boards, which share
// nothing.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brachmann/zoysii/game"
	"github.com/brachmann/zoysii/solver"
	"github.com/brachmann/zoysii/store"
)

var totalExpanded atomic.Int64

type solveUpdate struct {
	WorkerID int
	Board    string
	Found    bool
	Moves    int
	Took     time.Duration
}

type doneMsg struct{}

type model struct {
	boardsDone int
	found      int
	unsolved   int
	startTime  time.Time
	expanded   int64
	recent     []string
	msgs       chan tea.Msg
}

func initialModel(msgs chan tea.Msg) model {
	return model{startTime: time.Now(), msgs: msgs}
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForMsg(msgs chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-msgs
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForMsg(m.msgs), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		m.expanded = totalExpanded.Load()
		return m, tickCmd()
	case doneMsg:
		return m, tea.Quit
	case solveUpdate:
		m.boardsDone++
		outcome := "no solution"
		if msg.Found {
			m.found++
			outcome = fmt.Sprintf("%d moves", msg.Moves)
		} else {
			m.unsolved++
		}
		line := fmt.Sprintf("Worker %d: %s (%s, %s)", msg.WorkerID, msg.Board, outcome, msg.Took.Round(time.Millisecond))
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > 10 {
			m.recent = m.recent[:10]
		}
		return m, waitForMsg(m.msgs)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	boardsPerSec := float64(m.boardsDone) / duration.Seconds()
	statesPerSec := float64(m.expanded) / duration.Seconds()
	if duration.Seconds() < 1 {
		boardsPerSec = 0
		statesPerSec = 0
	}

	s := fmt.Sprintf("Boards Solved:  %d\n", m.boardsDone)
	s += fmt.Sprintf("  Found:        %d\n", m.found)
	s += fmt.Sprintf("  No Solution:  %d\n", m.unsolved)
	s += fmt.Sprintf("States Expanded: %d\n", m.expanded)
	s += fmt.Sprintf("Duration:       %s\n", duration.Round(time.Second))
	s += fmt.Sprintf("Boards/Sec:     %.2f\n", boardsPerSec)
	s += fmt.Sprintf("States/Sec:     %.0f\n\n", statesPerSec)

	s += "Recent Boards:\n"
	for _, r := range m.recent {
		s += r + "\n"
	}

	s += "\nPress q to quit.\n"
	return s
}

func main() {
	inPath := flag.String("in", "", "File with one board per line")
	dbPath := flag.String("db", "", "Board database; pending boards are solved and marked")
	outDir := flag.String("out-dir", "data/solves", "Output directory for parquet batches")
	workers := flag.Int("workers", 8, "Number of solver workers")
	moves := flag.Int("moves", solver.MaxMoves, "Max number of moves per board")
	flushBoards := flag.Int("flush-boards", 500, "Flush a parquet batch after this many boards")
	pendingLimit := flag.Int("pending", 1000, "Max pending boards to pull from the database")
	flag.Parse()

	if *moves <= 0 || *moves > solver.MaxMoves {
		log.Fatalf("Invalid: Max supported moves: %d", solver.MaxMoves)
	}

	var db *store.DB
	if *dbPath != "" {
		var err error
		db, err = store.OpenDB(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open board database: %v", err)
		}
		defer db.Close()
	}

	boards, err := collectBoards(*inPath, db, *pendingLimit)
	if err != nil {
		log.Fatalf("Failed to collect boards: %v", err)
	}
	if len(boards) == 0 {
		log.Fatal("No boards to solve. Try --help.")
	}
	log.Printf("Solving %d boards with %d workers", len(boards), *workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	work := make(chan string, len(boards))
	for _, b := range boards {
		work <- b
	}
	close(work)

	msgs := make(chan tea.Msg, 64)
	rows := make(chan store.SolveRow, 64)

	var writerWG sync.WaitGroup
	writerWG.Add(1)
	go func() {
		defer writerWG.Done()
		runWriter(*outDir, *flushBoards, rows)
	}()

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, id, *moves, db, work, rows, msgs)
		}(i)
	}

	go func() {
		wg.Wait()
		close(rows)
		writerWG.Wait()
		msgs <- doneMsg{}
	}()

	p := tea.NewProgram(initialModel(msgs))
	if _, err := p.Run(); err != nil {
		log.Fatalf("TUI error: %v", err)
	}
	stop()
	log.Printf("Done. Expanded %d states total.", totalExpanded.Load())
}

// collectBoards merges the input file and the database queue, deduplicated,
// keeping input-file order first.
func collectBoards(inPath string, db *store.DB, pendingLimit int) ([]string, error) {
	seen := map[string]bool{}
	var boards []string

	add := func(raw string) error {
		s := strings.TrimSpace(raw)
		if s == "" || strings.HasPrefix(s, "#") {
			return nil
		}
		b, err := game.ParseBoard(s)
		if err != nil {
			return fmt.Errorf("board %q: %w", s, err)
		}
		if canon := b.String(); !seen[canon] {
			seen[canon] = true
			boards = append(boards, canon)
		}
		return nil
	}

	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if err := add(scanner.Text()); err != nil {
				return nil, err
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if db != nil {
		pending, err := db.PendingBoards(pendingLimit)
		if err != nil {
			return nil, err
		}
		for _, b := range pending {
			if err := add(b); err != nil {
				return nil, err
			}
		}
	}
	return boards, nil
}

func runWorker(ctx context.Context, id, maxMoves int, db *store.DB, work <-chan string, rows chan<- store.SolveRow, msgs chan<- tea.Msg) {
	for raw := range work {
		if ctx.Err() != nil {
			return
		}
		board, err := game.ParseBoard(raw)
		if err != nil {
			continue // collectBoards validated already
		}

		start := time.Now()
		res, err := solver.Solve(ctx, board, solver.Options{MaxMoves: maxMoves})
		if err != nil {
			return // cancelled
		}
		took := time.Since(start)
		totalExpanded.Add(int64(res.Stats.Expanded))

		if db != nil {
			// Boards from the -in file were never queued; insert first so
			// their solutions reach the cache too.
			if _, err := db.InsertBoard(raw, "batch"); err != nil {
				log.Printf("insert board %q: %v", raw, err)
			}
			if err := db.MarkSolved(raw, res); err != nil {
				log.Printf("mark solved %q: %v", raw, err)
			}
		}
		rows <- store.NewSolveRow(raw, res, maxMoves, took, "batch")
		msgs <- solveUpdate{WorkerID: id, Board: raw, Found: res.Found, Moves: len(res.Moves), Took: took}
	}
}

// runWriter buffers rows and flushes a parquet batch every flushBoards rows,
// plus a final partial batch when the channel closes.
func runWriter(outDir string, flushBoards int, rows <-chan store.SolveRow) {
	if flushBoards <= 0 {
		flushBoards = 500
	}

	writer, err := store.NewBatchWriter(outDir)
	if err != nil {
		log.Printf("open batch writer: %v", err)
		return
	}

	flush := func(reopen bool) {
		path, n, err := writer.Finalize()
		if err != nil {
			log.Printf("finalize batch: %v", err)
		} else if n > 0 {
			log.Printf("wrote %d rows to %s", n, path)
		}
		if reopen {
			writer, err = store.NewBatchWriter(outDir)
			if err != nil {
				log.Printf("open batch writer: %v", err)
			}
		}
	}

	for row := range rows {
		if writer == nil {
			continue
		}
		if err := writer.WriteRows([]store.SolveRow{row}); err != nil {
			log.Printf("write row: %v", err)
			continue
		}
		if writer.BufferedRows() >= flushBoards {
			flush(true)
		}
	}
	if writer != nil {
		flush(false)
	}
}
