package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iamasit07/connect4-table/internal/domain"
)

type ResultRepo struct {
	DB *sql.DB
}

func NewResultRepo(db *sql.DB) *ResultRepo {
	return &ResultRepo{DB: db}
}

// Tally counts archived rounds by outcome.
type Tally struct {
	WinsA int `json:"winsA"`
	WinsB int `json:"winsB"`
	Ties  int `json:"ties"`
}

func (t Tally) Total() int {
	return t.WinsA + t.WinsB + t.Ties
}

// SaveResult appends a finished round to the archive
func (r *ResultRepo) SaveResult(ctx context.Context, result domain.RoundResult) error {
	boardJSON, err := json.Marshal(result.Grid)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %w", err)
	}

	query := `
	INSERT INTO round_result (table_id, status, winner, total_moves, duration_seconds, board_state, started_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err = r.DB.ExecContext(ctx, query,
		result.TableID,
		string(result.Status),
		int(result.Winner),
		result.Moves,
		int(result.Duration().Seconds()),
		boardJSON,
		result.StartedAt,
		result.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert round result: %w", err)
	}
	return nil
}

// ListRecent returns the most recently finished rounds, newest first
func (r *ResultRepo) ListRecent(ctx context.Context, limit int) ([]domain.RoundResult, error) {
	query := `
	SELECT table_id, status, winner, total_moves, board_state, started_at, finished_at
	FROM round_result
	ORDER BY finished_at DESC
	LIMIT $1;
	`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent results: %w", err)
	}
	defer rows.Close()

	results := make([]domain.RoundResult, 0, limit)
	for rows.Next() {
		var result domain.RoundResult
		var status string
		var winner int
		var boardJSON []byte

		err := rows.Scan(
			&result.TableID,
			&status,
			&winner,
			&result.Moves,
			&boardJSON,
			&result.StartedAt,
			&result.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		result.Status = domain.Status(status)
		result.Winner = domain.Disc(winner)
		if boardJSON != nil {
			if err := json.Unmarshal(boardJSON, &result.Grid); err != nil {
				return nil, fmt.Errorf("failed to unmarshal board state: %w", err)
			}
		}

		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows: %w", err)
	}
	return results, nil
}

// Tally aggregates the whole archive
func (r *ResultRepo) Tally(ctx context.Context) (Tally, error) {
	query := `
	SELECT
		COUNT(*) FILTER (WHERE status = $1 AND winner = $2),
		COUNT(*) FILTER (WHERE status = $1 AND winner = $3),
		COUNT(*) FILTER (WHERE status = $4)
	FROM round_result;
	`

	var t Tally
	err := r.DB.QueryRowContext(ctx, query,
		string(domain.StatusWon), int(domain.PlayerA), int(domain.PlayerB), string(domain.StatusTie),
	).Scan(&t.WinsA, &t.WinsB, &t.Ties)
	if err != nil {
		return Tally{}, fmt.Errorf("failed to tally results: %w", err)
	}
	return t, nil
}
