package domain

// Disc is the value held by a grid cell. The zero value is an empty cell.
type Disc uint8

const (
	Empty   Disc = 0
	PlayerA Disc = 1
	PlayerB Disc = 2
)

// Opponent returns the other player. Empty has no opponent.
func (d Disc) Opponent() Disc {
	switch d {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	}
	return Empty
}

func (d Disc) String() string {
	switch d {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	}
	return "."
}

const (
	Columns = 7
	Rows    = 6
	ToWin   = 4
	Cells   = Columns * Rows
)

// to represent where a round stands
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusTie        Status = "tie"
)

// Outcome is InProgress, Win(Winner) or Tie. Winner is Empty unless Status is StatusWon.
type Outcome struct {
	Status Status `json:"status"`
	Winner Disc   `json:"winner"`
}

var InProgress = Outcome{Status: StatusInProgress}

func Win(player Disc) Outcome {
	return Outcome{Status: StatusWon, Winner: player}
}

var Tie = Outcome{Status: StatusTie}

func (o Outcome) IsTerminal() bool {
	return o.Status == StatusWon || o.Status == StatusTie
}

// Placement records where an accepted drop came to rest.
type Placement struct {
	Column int  `json:"column"`
	Row    int  `json:"row"`
	Player Disc `json:"player"`
}

// basic errors a drop can be rejected with, none of them fatal
type Error string

func (e Error) Error() string {
	return string(e)
}

// Code is the stable identifier sent to clients.
func (e Error) Code() string {
	switch e {
	case ErrGameOver:
		return "game_over"
	case ErrInvalidColumn:
		return "invalid_column"
	case ErrColumnFull:
		return "column_full"
	}
	return "invalid_move"
}

const (
	ErrGameOver      Error = "game is over"
	ErrInvalidColumn Error = "invalid column"
	ErrColumnFull    Error = "column is full"
)
