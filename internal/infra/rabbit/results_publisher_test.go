package rabbit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"classroom-quiz/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	declared  []string
	published []amqp.Publishing
	keys      []string
	closed    bool
}

func (c *recordingChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.declared = append(c.declared, name+":"+kind)
	return nil
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.keys = append(c.keys, exchange+"/"+key)
	c.published = append(c.published, msg)
	return nil
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func TestResultsPublisherPublishesJSON(t *testing.T) {
	ch := &recordingChannel{}
	pub, err := NewResultsPublisher(ch, "classroom")
	require.NoError(t, err)
	require.Equal(t, []string{"classroom:topic"}, ch.declared)

	results := domain.FinalResults{
		Pin:         "1234",
		Total:       2,
		Leaderboard: []domain.LeaderboardEntry{{Rank: 1, StudentID: "s1", TotalPoints: 70}},
		FinishedAt:  time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.SaveResults(context.Background(), results))

	require.Equal(t, []string{"classroom/" + FinishedRoutingKey}, ch.keys)
	require.Len(t, ch.published, 1)
	require.Equal(t, "application/json", ch.published[0].ContentType)

	var got domain.FinalResults
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &got))
	require.Equal(t, "1234", got.Pin)
	require.Equal(t, 70, got.Leaderboard[0].TotalPoints)

	require.NoError(t, pub.Close())
	require.True(t, ch.closed)
}
