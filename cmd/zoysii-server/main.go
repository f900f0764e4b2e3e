// Command zoysii-server serves the solver over HTTP. POST /solve answers one
// request; /solve/ws streams per-layer search progress over a websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brachmann/zoysii/logging"
	"github.com/brachmann/zoysii/server"
	"github.com/brachmann/zoysii/store"
)

func main() {
	addr := flag.String("addr", getEnvOrDefault("ADDR", ":8080"), "Listen address")
	dbPath := flag.String("db", getEnvOrDefault("DB_PATH", ""), "SQLite board cache; empty disables caching")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(logging.NewHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	var db *store.DB
	if *dbPath != "" {
		var err error
		db, err = store.OpenDB(*dbPath)
		if err != nil {
			logger.Error("open board cache", "path", *dbPath, "err", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("board cache open", "path", *dbPath)
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.New(logger, db).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
