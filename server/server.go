// Package server exposes the solver over HTTP: a one-shot JSON endpoint and
// a websocket variant that streams search progress per BFS layer.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brachmann/zoysii/game"
	"github.com/brachmann/zoysii/solver"
	"github.com/brachmann/zoysii/store"
)

// SolveRequest is the body of POST /solve and the first websocket message.
type SolveRequest struct {
	Board    string `json:"board"`
	MaxMoves int    `json:"max_moves,omitempty"`
}

// SolveResponse reports one solve outcome. Moves holds display names.
type SolveResponse struct {
	Board      string   `json:"board"`
	Found      bool     `json:"found"`
	Moves      []string `json:"moves"`
	MoveCount  int      `json:"move_count"`
	Expanded   int      `json:"expanded"`
	Visited    int      `json:"visited"`
	DurationMs int64    `json:"duration_ms"`
	Cached     bool     `json:"cached"`
}

type wsMessage struct {
	Type     string         `json:"type"`
	Depth    int            `json:"depth"`
	Frontier int            `json:"frontier"`
	Visited  int            `json:"visited"`
	Error    string         `json:"error,omitempty"`
	Result   *SolveResponse `json:"result,omitempty"`
}

// Server handles solve requests. db is optional; when set, solved boards are
// cached and repeat requests skip the search.
type Server struct {
	log *slog.Logger
	db  *store.DB
}

// New creates a Server. logger may be nil; db may be nil to disable caching.
func New(logger *slog.Logger, db *store.DB) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{log: logger, db: db}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/solve", s.handleSolve)
	mux.HandleFunc("/solve/ws", s.handleSolveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	board, err := game.ParseBoard(req.Board)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.MaxMoves < 0 || req.MaxMoves > solver.MaxMoves {
		http.Error(w, "max_moves out of range", http.StatusBadRequest)
		return
	}

	if resp, ok := s.cached(board.String()); ok {
		s.log.Info("solve served from cache", "board", board.String())
		writeJSON(w, resp)
		return
	}

	start := time.Now()
	res, err := solver.Solve(r.Context(), board, solver.Options{MaxMoves: req.MaxMoves})
	if err != nil {
		// Client went away mid-search.
		s.log.Warn("solve aborted", "board", board.String(), "err", err)
		return
	}
	took := time.Since(start)
	s.record(board.String(), res)
	s.log.Info("solve finished",
		"board", board.String(), "found", res.Found,
		"moves", len(res.Moves), "expanded", res.Stats.Expanded, "took", took)

	writeJSON(w, response(board.String(), res, took, false))
}

func (s *Server) handleSolveWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req SolveRequest
	if err := conn.ReadJSON(&req); err != nil {
		return
	}

	board, err := game.ParseBoard(req.Board)
	if err != nil {
		_ = conn.WriteJSON(wsMessage{Type: "error", Error: err.Error()})
		return
	}
	if req.MaxMoves < 0 || req.MaxMoves > solver.MaxMoves {
		_ = conn.WriteJSON(wsMessage{Type: "error", Error: "max_moves out of range"})
		return
	}

	if resp, ok := s.cached(board.String()); ok {
		_ = conn.WriteJSON(wsMessage{Type: "result", Result: &resp})
		return
	}

	// Upgrading hijacks the connection, so the request context no longer
	// ends when the client goes away. Watch the socket ourselves: the read
	// loop errors as soon as the peer closes, and a failed layer write means
	// the same thing. Either way the search must stop.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	start := time.Now()
	res, err := solver.Solve(ctx, board, solver.Options{
		MaxMoves: req.MaxMoves,
		OnLayer: func(l solver.Layer) {
			if err := conn.WriteJSON(wsMessage{
				Type:     "layer",
				Depth:    l.Depth,
				Frontier: l.Frontier,
				Visited:  l.Visited,
			}); err != nil {
				cancel()
			}
		},
	})
	if err != nil {
		s.log.Warn("websocket solve aborted", "board", board.String(), "err", err)
		return
	}
	s.record(board.String(), res)

	resp := response(board.String(), res, time.Since(start), false)
	_ = conn.WriteJSON(wsMessage{Type: "result", Result: &resp})
}

// cached returns the stored solve outcome for a board, if the cache holds
// one.
func (s *Server) cached(board string) (SolveResponse, bool) {
	if s.db == nil {
		return SolveResponse{}, false
	}
	rec, err := s.db.Lookup(board)
	if err != nil {
		s.log.Warn("cache lookup failed", "board", board, "err", err)
		return SolveResponse{}, false
	}
	if rec == nil || !rec.Solved {
		return SolveResponse{}, false
	}
	return SolveResponse{
		Board:     board,
		Found:     rec.Found,
		Moves:     solver.MoveNames(rec.Moves),
		MoveCount: rec.MoveCount,
		Cached:    true,
	}, true
}

func (s *Server) record(board string, res solver.Result) {
	if s.db == nil {
		return
	}
	if _, err := s.db.InsertBoard(board, "server"); err != nil {
		s.log.Warn("cache insert failed", "board", board, "err", err)
		return
	}
	if err := s.db.MarkSolved(board, res); err != nil {
		s.log.Warn("cache update failed", "board", board, "err", err)
	}
}

func response(board string, res solver.Result, took time.Duration, cached bool) SolveResponse {
	return SolveResponse{
		Board:      board,
		Found:      res.Found,
		Moves:      solver.MoveNames(res.Moves),
		MoveCount:  len(res.Moves),
		Expanded:   res.Stats.Expanded,
		Visited:    res.Stats.Visited,
		DurationMs: took.Milliseconds(),
		Cached:     cached,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
