// Command play is a terminal hot-seat Connect-Four: both players share the keyboard.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iamasit07/connect4-table/internal/domain"
)

func main() {
	if err := play(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func play(in io.Reader, out io.Writer) error {
	g := domain.NewGame()
	scanner := bufio.NewScanner(in)

	render(out, g.Snapshot())
	for {
		fmt.Fprint(out, prompt(g))
		if !scanner.Scan() {
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "q", "quit":
			return nil
		case "r", "reset":
			g.Reset()
			render(out, g.Snapshot())
			continue
		case "":
			continue
		}

		col, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(out, "%q is not a column\n", input)
			continue
		}

		snapshot, err := g.Drop(col)
		if err != nil {
			fmt.Fprintf(out, "Move rejected: %v\n", err)
			continue
		}
		render(out, snapshot)
	}
}

func render(out io.Writer, s domain.Snapshot) {
	fmt.Fprint(out, "\n", s.Grid.String())
	switch s.Outcome.Status {
	case domain.StatusWon:
		fmt.Fprintf(out, "Player %s wins! (r to play again, q to quit)\n", s.Outcome.Winner)
	case domain.StatusTie:
		fmt.Fprintln(out, "It's a tie! (r to play again, q to quit)")
	}
}

func prompt(g *domain.Game) string {
	if g.IsFinished() {
		return "> "
	}
	return fmt.Sprintf("Player %s, column 0-%d: ", g.Turn(), domain.Columns-1)
}
