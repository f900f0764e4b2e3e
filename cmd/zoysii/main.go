// Command zoysii finds the shortest solution for Zoysii boards given on the
// command line or on stdin.
//
// Example:
//
//	zoysii "18 9 6 0|0 9 3 0|33 18 18 3|0 0 15 0"
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/brachmann/zoysii/game"
	"github.com/brachmann/zoysii/solver"
)

func main() {
	moves := flag.Int("moves", 20, "Max number of moves")
	stdin := flag.Bool("stdin", false, "Read boards as lines from stdin")
	flag.Parse()

	if *moves <= 0 || *moves > solver.MaxMoves {
		fmt.Fprintf(os.Stderr, "Invalid: Max supported moves: %d\n", solver.MaxMoves)
		os.Exit(1)
	}

	ctx := context.Background()

	switch {
	case *stdin:
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			board, err := game.ParseBoard(strings.TrimSpace(scanner.Text()))
			if err != nil {
				fmt.Fprintln(os.Stderr, "Invalid: Failed to parse board!")
				os.Exit(2)
			}
			res, err := solver.Solve(ctx, board, solver.Options{MaxMoves: *moves})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if res.Found {
				fmt.Println(strings.Join(solver.MoveNames(res.Moves), ","))
			} else {
				fmt.Println("X")
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

	case flag.NArg() > 0:
		unsolved := false
		for _, arg := range flag.Args() {
			board, err := game.ParseBoard(arg)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Invalid: Failed to parse board!")
				os.Exit(2)
			}
			res, err := solver.Solve(ctx, board, solver.Options{MaxMoves: *moves})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if res.Found {
				fmt.Printf("Solution with %d moves: %s\n",
					len(res.Moves), strings.Join(solver.MoveNames(res.Moves), ", "))
			} else {
				fmt.Println("No solution!")
				unsolved = true
			}
		}
		if unsolved {
			os.Exit(1)
		}

	default:
		fmt.Println("No board to solve. Try --help.")
		os.Exit(3)
	}
}
