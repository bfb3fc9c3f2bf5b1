package domain

import "sort"

// LeaderboardEntry is one ranked row of a room leaderboard.
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	StudentID     string  `json:"studentId"`
	Name          string  `json:"name"`
	Avatar        string  `json:"avatar,omitempty"`
	CorrectCount  int     `json:"correctCount"`
	TotalTimeUsed float64 `json:"totalTimeUsed"`
	TotalPoints   int     `json:"totalPoints"`
}

// RankBefore orders entries by points desc, correct answers desc, time used asc
// and finally student id. Distinct student ids never compare equal.
func RankBefore(a, b LeaderboardEntry) bool {
	if a.TotalPoints != b.TotalPoints {
		return a.TotalPoints > b.TotalPoints
	}
	if a.CorrectCount != b.CorrectCount {
		return a.CorrectCount > b.CorrectCount
	}
	if a.TotalTimeUsed != b.TotalTimeUsed {
		return a.TotalTimeUsed < b.TotalTimeUsed
	}
	return a.StudentID < b.StudentID
}

// Rank sorts entries in place and assigns 1-based ranks.
func Rank(entries []LeaderboardEntry) []LeaderboardEntry {
	sort.Slice(entries, func(i, j int) bool {
		return RankBefore(entries[i], entries[j])
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
