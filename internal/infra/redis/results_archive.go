package redis

import (
	"context"
	"encoding/json"
	"time"

	"classroom-quiz/internal/domain"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ResultsArchive keeps the final results of recent sessions for export tools.
// Results are stored as: SET quiz:results:{pin} {json} EX ttl
type ResultsArchive struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultsArchive(client *redis.Client, ttl time.Duration) *ResultsArchive {
	return &ResultsArchive{client: client, ttl: ttl}
}

func (a *ResultsArchive) SaveResults(ctx context.Context, results domain.FinalResults) error {
	data, err := json.Marshal(results)
	if err != nil {
		return errors.Wrap(err, "marshal results")
	}
	if err := a.client.Set(ctx, a.key(results.Pin), data, a.ttl).Err(); err != nil {
		return errors.Wrapf(err, "archive results for %s", results.Pin)
	}
	return nil
}

// LoadResults returns the archived results of a PIN.
func (a *ResultsArchive) LoadResults(ctx context.Context, pin string) (domain.FinalResults, error) {
	raw, err := a.client.Get(ctx, a.key(pin)).Bytes()
	if err == redis.Nil {
		return domain.FinalResults{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.FinalResults{}, errors.Wrapf(err, "load results for %s", pin)
	}
	var results domain.FinalResults
	if err := json.Unmarshal(raw, &results); err != nil {
		return domain.FinalResults{}, errors.Wrap(err, "unmarshal results")
	}
	return results, nil
}

func (a *ResultsArchive) key(pin string) string {
	return "quiz:results:" + pin
}
