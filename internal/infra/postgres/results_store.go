package postgres

import (
	"context"
	"encoding/json"

	"classroom-quiz/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

// ResultsStore appends finished sessions to the quiz_results table.
type ResultsStore struct {
	pool *pgxpool.Pool
}

func NewResultsStore(pool *pgxpool.Pool) *ResultsStore {
	return &ResultsStore{pool: pool}
}

func (s *ResultsStore) SaveResults(ctx context.Context, results domain.FinalResults) error {
	board, err := json.Marshal(results.Leaderboard)
	if err != nil {
		return errors.Wrap(err, "marshal leaderboard")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_results (pin, total, leaderboard, finished_at) VALUES ($1, $2, $3::jsonb, $4)`,
		results.Pin, results.Total, string(board), results.FinishedAt)
	if err != nil {
		return errors.Wrapf(err, "insert results for %s", results.Pin)
	}
	return nil
}

// LatestResults returns the most recent finished session for a PIN.
func (s *ResultsStore) LatestResults(ctx context.Context, pin string) (domain.FinalResults, error) {
	results := domain.FinalResults{Pin: pin}
	var board []byte
	err := s.pool.QueryRow(ctx,
		`SELECT total, leaderboard, finished_at FROM quiz_results WHERE pin=$1 ORDER BY finished_at DESC LIMIT 1`,
		pin).Scan(&results.Total, &board, &results.FinishedAt)
	if err != nil {
		return domain.FinalResults{}, errors.Wrapf(err, "load results for %s", pin)
	}
	if err := json.Unmarshal(board, &results.Leaderboard); err != nil {
		return domain.FinalResults{}, errors.Wrap(err, "unmarshal leaderboard")
	}
	return results, nil
}
