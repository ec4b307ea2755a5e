package domain

import "strings"

// Grid is indexed [column][row]; row 0 is the bottom of the column.
type Grid [Columns][Rows]Disc

// Board is a grid plus the number of occupied cells.
type Board struct {
	Grid   Grid
	Filled int
}

func IsValidColumn(column int) bool {
	return column >= 0 && column < Columns
}

func inBounds(column, row int) bool {
	return column >= 0 && column < Columns && row >= 0 && row < Rows
}

// LandingRow returns the lowest empty row of the column.
// Rows fill bottom-up, so the first empty cell found from row 0 is where a disc rests.
func (g *Grid) LandingRow(column int) (int, bool) {
	for row := 0; row < Rows; row++ {
		if g[column][row] == Empty {
			return row, true
		}
	}
	return -1, false
}

// Place drops a disc into the column and returns the row it landed on.
// The caller has already validated the column index.
func (b *Board) Place(column int, player Disc) (int, error) {
	row, ok := b.Grid.LandingRow(column)
	if !ok {
		return -1, ErrColumnFull
	}
	b.Grid[column][row] = player
	b.Filled++
	return row, nil
}

func (b *Board) IsFull() bool {
	return b.Filled >= Cells
}

// String renders the grid top row first, with column indices underneath.
func (g Grid) String() string {
	var sb strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		sb.WriteByte('|')
		for col := 0; col < Columns; col++ {
			sb.WriteString(g[col][row].String())
			sb.WriteByte('|')
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte(' ')
	for col := 0; col < Columns; col++ {
		sb.WriteByte(byte('0' + col))
		sb.WriteByte(' ')
	}
	sb.WriteByte('\n')
	return sb.String()
}
