package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankOrdering(t *testing.T) {
	entries := []LeaderboardEntry{
		{StudentID: "d", TotalPoints: 100, CorrectCount: 1, TotalTimeUsed: 5},
		{StudentID: "c", TotalPoints: 100, CorrectCount: 2, TotalTimeUsed: 9},
		{StudentID: "b", TotalPoints: 100, CorrectCount: 2, TotalTimeUsed: 4},
		{StudentID: "a", TotalPoints: 100, CorrectCount: 2, TotalTimeUsed: 4},
		{StudentID: "e", TotalPoints: 150},
		{StudentID: "f"},
	}

	ranked := Rank(entries)

	ids := make([]string, 0, len(ranked))
	for i, e := range ranked {
		require.Equal(t, i+1, e.Rank)
		ids = append(ids, e.StudentID)
	}
	require.Equal(t, []string{"e", "a", "b", "c", "d", "f"}, ids)
}

func TestRankBeforeIsStrict(t *testing.T) {
	a := LeaderboardEntry{StudentID: "a", TotalPoints: 10, CorrectCount: 1, TotalTimeUsed: 2}
	b := a
	b.StudentID = "b"

	require.True(t, RankBefore(a, b))
	require.False(t, RankBefore(b, a))
	require.False(t, RankBefore(a, a))
}
