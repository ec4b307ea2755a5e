package domain

import "time"

// RoundResult describes a finished round, from the reset (or table creation)
// that started it to the drop that ended it.
type RoundResult struct {
	TableID    string    `json:"tableId"`
	Status     Status    `json:"status"`
	Winner     Disc      `json:"winner"`
	Moves      int       `json:"moves"`
	Grid       Grid      `json:"grid"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

func (r RoundResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
