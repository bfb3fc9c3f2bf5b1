package app

import (
	"testing"
	"time"

	"classroom-quiz/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestRoomStampsWithItsClock(t *testing.T) {
	now := time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)
	room := NewRoomWithClock("482913", func() time.Time { return now })

	shown := room.showQuestion(domain.NewQuestion(domain.QuestionInput{Answers: []any{"a", "b"}}))
	require.Equal(t, now.UnixMilli(), shown.StartAt)

	// A lecturer-supplied start time wins over the clock.
	shown = room.showQuestion(domain.NewQuestion(domain.QuestionInput{QuestionIndex: float64(1), StartAt: float64(1700000000000)}))
	require.Equal(t, int64(1700000000000), shown.StartAt)

	now = now.Add(15 * time.Minute)
	results := room.finish(0, nil)
	require.Equal(t, now, results.FinishedAt)
	require.Equal(t, "482913", results.Pin)
}

func TestRoomIdleOnlyWithoutState(t *testing.T) {
	room := NewRoom("1")
	require.True(t, room.IsIdle())

	room.setMeta(domain.MetaInput{QuizTitle: "Quiz"})
	require.False(t, room.IsIdle(), "meta")

	room = NewRoom("2")
	room.submitInput(domain.InputSubmission{StudentID: "s1", Value: "x"})
	require.False(t, room.IsIdle(), "score entry")

	room = NewRoom("3")
	_, cancel := room.join(nil)
	require.False(t, room.IsIdle(), "subscriber")
	cancel()
	require.True(t, room.IsIdle())
}
