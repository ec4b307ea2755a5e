package domain

// Snapshot is a copy of the game state handed to whoever renders it.
// Grid is an array, so a Snapshot shares nothing with the live game.
type Snapshot struct {
	Grid     Grid       `json:"grid"`
	Turn     Disc       `json:"turn"`
	Outcome  Outcome    `json:"outcome"`
	Moves    int        `json:"moves"`
	LastMove *Placement `json:"lastMove,omitempty"`
}

// Game owns the grid, the turn and the outcome of one round.
// It is not safe for concurrent use; callers serialise Drop and Reset.
type Game struct {
	board    Board
	turn     Disc
	outcome  Outcome
	lastMove *Placement
}

func NewGame() *Game {
	g := &Game{}
	g.Reset()
	return g
}

// Reset starts a fresh round: empty grid, PlayerA to move, in progress.
func (g *Game) Reset() {
	g.board = Board{}
	g.turn = PlayerA
	g.outcome = InProgress
	g.lastMove = nil
}

// Drop places the current player's disc in column.
// A rejected drop changes nothing and returns the current snapshot with the error.
func (g *Game) Drop(column int) (Snapshot, error) {
	if g.outcome.IsTerminal() {
		return g.Snapshot(), ErrGameOver
	}

	if !IsValidColumn(column) {
		return g.Snapshot(), ErrInvalidColumn
	}

	player := g.turn
	row, err := g.board.Place(column, player)
	if err != nil {
		return g.Snapshot(), err
	}
	g.lastMove = &Placement{Column: column, Row: row, Player: player}

	g.outcome = Evaluate(&g.board, column, row, player)
	if !g.outcome.IsTerminal() {
		g.turn = player.Opponent()
	}

	return g.Snapshot(), nil
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Grid:    g.board.Grid,
		Turn:    g.turn,
		Outcome: g.outcome,
		Moves:   g.board.Filled,
	}
	if g.lastMove != nil {
		last := *g.lastMove
		s.LastMove = &last
	}
	return s
}

func (g *Game) Outcome() Outcome {
	return g.outcome
}

func (g *Game) Turn() Disc {
	return g.turn
}

func (g *Game) IsFinished() bool {
	return g.outcome.IsTerminal()
}
