// Package scraper discovers Zoysii boards published on HTML pages and queues
// them for solving.
package scraper

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brachmann/zoysii/game"
)

// boardRe matches the textual board grammar: 4 rows of 4 numbers. Range
// checks happen through game.ParseBoard afterwards.
var boardRe = regexp.MustCompile(`^\d{1,3}( \d{1,3}){3}(\|\d{1,3}( \d{1,3}){3}){3}$`)

// Config holds discovery worker configuration.
type Config struct {
	PageURLs     []string      // pages to scrape for boards
	Selector     string        // CSS selector of elements carrying a board
	RequestDelay time.Duration // delay between HTTP requests to be polite
}

// DefaultConfig returns sensible defaults. Boards are expected either in a
// data-board attribute or as the element text.
func DefaultConfig() Config {
	return Config{
		Selector:     "[data-board], code.board",
		RequestDelay: 500 * time.Millisecond,
	}
}

// Sink receives discovered boards. *store.DB satisfies it.
type Sink interface {
	InsertBoard(board, source string) (bool, error)
}

// Worker discovers boards from the configured pages.
type Worker struct {
	config  Config
	client  *http.Client
	log     *slog.Logger
	known   map[string]bool
	knownMu sync.Mutex
}

// NewWorker creates a discovery worker. knownBoards seeds the dedupe set and
// may be nil.
func NewWorker(config Config, logger *slog.Logger, knownBoards map[string]bool) *Worker {
	if knownBoards == nil {
		knownBoards = make(map[string]bool)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.Selector == "" {
		config.Selector = DefaultConfig().Selector
	}
	return &Worker{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    logger,
		known:  knownBoards,
	}
}

// Discover scrapes every configured page once and inserts new boards into
// sink. It returns the number of new boards queued.
func (w *Worker) Discover(sink Sink) (int, error) {
	totalNew := 0
	for i, pageURL := range w.config.PageURLs {
		if i > 0 {
			time.Sleep(w.config.RequestDelay)
		}

		boards, err := w.fetchBoards(pageURL)
		if err != nil {
			w.log.Warn("page scrape failed", "url", pageURL, "err", err)
			continue
		}
		w.log.Info("page scraped", "url", pageURL, "boards", len(boards))

		for _, board := range boards {
			w.knownMu.Lock()
			known := w.known[board]
			if !known {
				w.known[board] = true
			}
			w.knownMu.Unlock()
			if known {
				continue
			}

			inserted, err := sink.InsertBoard(board, pageURL)
			if err != nil {
				return totalNew, fmt.Errorf("queue board: %w", err)
			}
			if inserted {
				totalNew++
			}
		}
	}
	return totalNew, nil
}

// fetchBoards extracts valid board strings from one page.
func (w *Worker) fetchBoards(pageURL string) ([]string, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "ZoysiiSolver/1.0 (board-collector)")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var boards []string
	doc.Find(w.config.Selector).Each(func(_ int, sel *goquery.Selection) {
		raw, ok := sel.Attr("data-board")
		if !ok {
			raw = sel.Text()
		}
		board, ok := normalizeBoard(raw)
		if ok {
			boards = append(boards, board)
		}
	})
	return boards, nil
}

// normalizeBoard validates a scraped string and returns its canonical
// encoding.
func normalizeBoard(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if !boardRe.MatchString(s) {
		return "", false
	}
	b, err := game.ParseBoard(s)
	if err != nil {
		return "", false
	}
	return b.String(), true
}
