// Command zoysii-scraper polls HTML pages for published boards and queues new
// ones in the board database, where zoysii-batch picks them up.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brachmann/zoysii/logging"
	"github.com/brachmann/zoysii/scraper"
	"github.com/brachmann/zoysii/store"
)

func main() {
	// Minimal flags (favor simplicity)
	dbPath := flag.String("db", getEnvOrDefault("DB_PATH", "data/boards.db"), "Board database path")
	urls := flag.String("urls", getEnvOrDefault("PAGE_URLS", ""), "Comma-separated pages to scrape")
	selector := flag.String("selector", getEnvOrDefault("SELECTOR", ""), "CSS selector of board elements (default [data-board], code.board)")
	interval := flag.Duration("interval", getEnvDurationOrDefault("INTERVAL", 10*time.Minute), "Delay between scrape passes; 0 scrapes once and exits")
	requestDelay := flag.Duration("delay", getEnvDurationOrDefault("DELAY", 500*time.Millisecond), "Delay between HTTP requests")
	debug := flag.Bool("debug", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(logging.NewHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	pageURLs := splitURLs(*urls)
	if len(pageURLs) == 0 {
		log.Fatal("No pages to scrape. Pass -urls or set PAGE_URLS.")
	}

	db, err := store.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open board database: %v", err)
	}
	defer db.Close()

	config := scraper.DefaultConfig()
	config.PageURLs = pageURLs
	config.RequestDelay = *requestDelay
	if *selector != "" {
		config.Selector = *selector
	}
	worker := scraper.NewWorker(config, logger, nil)

	logger.Info("starting board scraper",
		"db", *dbPath,
		"pages", len(pageURLs),
		"interval", interval.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		n, err := worker.Discover(db)
		if err != nil {
			logger.Error("scrape pass failed", "err", err)
		} else {
			logger.Info("scrape pass complete", "new_boards", n)
		}

		if *interval <= 0 {
			return
		}
		select {
		case <-ctx.Done():
			logger.Info("interrupted, exiting")
			return
		case <-time.After(*interval):
		}
	}
}

func splitURLs(s string) []string {
	var out []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Environment variable helpers
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
