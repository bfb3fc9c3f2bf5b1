package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"classroom-quiz/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestResultsArchiveRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	archive := NewResultsArchive(newClient(mr), time.Hour)
	ctx := context.Background()

	if _, err := archive.LoadResults(ctx, "1234"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound before save, got %v", err)
	}

	results := domain.FinalResults{
		Pin:   "1234",
		Total: 3,
		Leaderboard: []domain.LeaderboardEntry{
			{Rank: 1, StudentID: "s1", Name: "Ana", CorrectCount: 2, TotalPoints: 150},
		},
		FinishedAt: time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC),
	}
	if err := archive.SaveResults(ctx, results); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL("quiz:results:1234"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	got, err := archive.LoadResults(ctx, "1234")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Total != 3 || len(got.Leaderboard) != 1 || got.Leaderboard[0].TotalPoints != 150 {
		t.Fatalf("unexpected results %+v", got)
	}
}
