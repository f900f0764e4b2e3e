// Command zoysii-play is an interactive terminal game. Arrow keys move the
// cursor, h asks the solver for a hint, g jumps the cursor to a numbered cell
// along a shortest path, r restarts, q quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brachmann/zoysii/game"
	"github.com/brachmann/zoysii/routing"
	"github.com/brachmann/zoysii/rules"
	"github.com/brachmann/zoysii/solver"
)

const defaultBoard = "18 9 6 0|0 9 3 0|33 18 18 3|0 0 15 0"

type hintMsg struct {
	moves []int
	found bool
	err   error
}

type model struct {
	initial game.Board
	board   game.Board
	moves   int

	gotoBuf string // pending "g" coordinates, "" when inactive
	status  string
	hinting bool
}

func initialModel(b game.Board) model {
	return model{initial: b, board: b}
}

func (m model) Init() tea.Cmd {
	return nil
}

func hintCmd(b game.Board) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res, err := solver.Solve(ctx, b, solver.Options{MaxMoves: solver.MaxMoves})
		if err != nil {
			return hintMsg{err: err}
		}
		return hintMsg{moves: res.Moves, found: res.Found}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case hintMsg:
		m.hinting = false
		switch {
		case msg.err != nil:
			m.status = "Hint timed out."
		case !msg.found:
			m.status = "No solution from here."
		case len(msg.moves) == 0:
			m.status = "Already won."
		default:
			m.status = fmt.Sprintf("Hint: %s (%d to go)", rules.MoveName(msg.moves[0]), len(msg.moves))
		}
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "q" || key == "ctrl+c" {
			return m, tea.Quit
		}

		if m.gotoBuf != "" {
			return m.updateGoto(key)
		}

		switch key {
		case "up":
			return m.applyMove(rules.MoveUp), nil
		case "down":
			return m.applyMove(rules.MoveDown), nil
		case "left":
			return m.applyMove(rules.MoveLeft), nil
		case "right":
			return m.applyMove(rules.MoveRight), nil
		case "h":
			if m.hinting {
				return m, nil
			}
			m.hinting = true
			m.status = "Thinking..."
			return m, hintCmd(m.board)
		case "g":
			m.gotoBuf = "g"
			m.status = "Go to: type row then column (0-3 each)"
			return m, nil
		case "r":
			m.board = m.initial
			m.moves = 0
			m.status = "Restarted."
			return m, nil
		}
	}
	return m, nil
}

func (m model) applyMove(move int) model {
	if rules.IsWon(m.board) || rules.IsLost(m.board) {
		return m
	}
	next, ok := rules.Apply(m.board, move)
	if !ok {
		m.status = "Can't move off the board."
		return m
	}
	m.board = next
	m.moves++
	m.status = ""
	return m
}

// updateGoto consumes "g<row><col>" then walks the cursor to the chosen cell
// along a shortest path over empty cells. Jumping only works while the cursor
// sits on an empty cell, since travel over numbers would merge them.
func (m model) updateGoto(key string) (tea.Model, tea.Cmd) {
	if key == "esc" {
		m.gotoBuf = ""
		m.status = ""
		return m, nil
	}
	if len(key) != 1 || key[0] < '0' || key[0] > '3' {
		return m, nil
	}
	m.gotoBuf += key
	if len(m.gotoBuf) < 3 {
		return m, nil
	}

	target := game.Point{X: int(m.gotoBuf[2] - '0'), Y: int(m.gotoBuf[1] - '0')}
	m.gotoBuf = ""
	m.status = ""

	if m.board.Cell(m.board.Cursor()) != 0 {
		m.status = "Can only jump from an empty cell."
		return m, nil
	}
	if m.board.Cell(target) == 0 {
		m.status = "Pick a numbered cell."
		return m, nil
	}

	marks := routing.FromBoard(m.board)
	for i := 0; i < game.CellCount && m.board.Cursor() != target; i++ {
		move, ok := routing.ActionTowards(marks, m.board.Cursor(), target)
		if !ok {
			m.status = "No route to that cell."
			return m, nil
		}
		next, legal := rules.Apply(m.board, move)
		if !legal {
			m.status = "No route to that cell."
			return m, nil
		}
		m.board = next
		m.moves++
	}
	return m, nil
}

func (m model) View() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Moves: %d\n\n", m.moves))

	cursor := m.board.Cursor()
	for y := 0; y < game.N; y++ {
		sb.WriteString("  ")
		for x := 0; x < game.N; x++ {
			p := game.Point{X: x, Y: y}
			cell := "."
			if v := m.board.Cell(p); v != 0 {
				cell = fmt.Sprintf("%d", v)
			}
			if p == cursor {
				sb.WriteString(fmt.Sprintf("[%3s]", cell))
			} else {
				sb.WriteString(fmt.Sprintf(" %3s ", cell))
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	switch {
	case rules.IsWon(m.board):
		sb.WriteString(fmt.Sprintf("You won in %d moves! Press r to play again.\n", m.moves))
	case rules.IsLost(m.board):
		sb.WriteString("No way to clear the board. Press r to restart.\n")
	case m.status != "":
		sb.WriteString(m.status + "\n")
	default:
		sb.WriteString("Arrows move. h hint, g jump, r restart, q quit.\n")
	}
	return sb.String()
}

func main() {
	boardFlag := flag.String("board", "", "Board to play, rows separated by |")
	flag.Parse()

	raw := *boardFlag
	if raw == "" && flag.NArg() > 0 {
		raw = flag.Arg(0)
	}
	if raw == "" {
		raw = defaultBoard
	}

	board, err := game.ParseBoard(raw)
	if err != nil {
		log.Fatalf("Bad board %q: %v", raw, err)
	}

	if _, err := tea.NewProgram(initialModel(board)).Run(); err != nil {
		log.Fatalf("TUI error: %v", err)
	}
}
