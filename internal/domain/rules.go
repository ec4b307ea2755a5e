package domain

// Axis is one line direction through a cell. The mirror direction is (-DCol, -DRow).
type Axis struct {
	Name string
	DCol int
	DRow int
}

var Axes = [4]Axis{
	{Name: "vertical", DCol: 0, DRow: 1},
	{Name: "horizontal", DCol: 1, DRow: 0},
	{Name: "diagonal /", DCol: 1, DRow: 1},
	{Name: "diagonal \\", DCol: 1, DRow: -1},
}

// CountInDirection counts the player's discs extending from (column, row),
// not counting the origin. It never walks more than ToWin-1 steps.
func CountInDirection(grid *Grid, column, row, dCol, dRow int, player Disc) int {
	count := 0
	c, r := column+dCol, row+dRow
	for step := 0; step < ToWin-1; step++ {
		if !inBounds(c, r) || grid[c][r] != player {
			break
		}
		count++
		c += dCol
		r += dRow
	}
	return count
}

// CheckWin reports whether the disc at (column, row) completes ToWin in a row.
// Only lines through this cell are checked: a new line can only be completed by the
// disc just placed.
func CheckWin(grid *Grid, column, row int, player Disc) bool {
	_, ok := WinningAxis(grid, column, row, player)
	return ok
}

// WinningAxis returns the first axis on which the placement wins.
func WinningAxis(grid *Grid, column, row int, player Disc) (Axis, bool) {
	for _, axis := range Axes {
		forward := CountInDirection(grid, column, row, axis.DCol, axis.DRow, player)
		backward := CountInDirection(grid, column, row, -axis.DCol, -axis.DRow, player)
		if forward+backward >= ToWin-1 {
			return axis, true
		}
	}
	return Axis{}, false
}

// Evaluate derives the outcome caused by placing player at (column, row).
// Win is checked before tie, so a winning last disc is never a tie.
func Evaluate(board *Board, column, row int, player Disc) Outcome {
	if CheckWin(&board.Grid, column, row, player) {
		return Win(player)
	}
	if board.IsFull() {
		return Tie
	}
	return InProgress
}
