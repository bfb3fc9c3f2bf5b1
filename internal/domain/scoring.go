package domain

import "math"

// PointsPerSecond is the speed bonus awarded per second left on the clock.
const PointsPerSecond = 10

// CalcPoints awards a pure speed bonus for a correct answer. Both times are
// floored to non-negative whole seconds first; the result is never negative.
func CalcPoints(isCorrect bool, maxTime, timeUsed float64) int {
	if !isCorrect {
		return 0
	}
	remaining := wholeSeconds(maxTime) - wholeSeconds(timeUsed)
	if remaining < 0 {
		remaining = 0
	}
	return remaining * PointsPerSecond
}

func wholeSeconds(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return int(math.Floor(v))
}

// Score is a student's cumulative result for a session.
type Score struct {
	CorrectCount  int     `json:"correctCount"`
	TotalTimeUsed float64 `json:"totalTimeUsed"`
	TotalPoints   int     `json:"totalPoints"`
}

// Add folds one graded answer into the score.
func (s *Score) Add(correct bool, timeUsed float64, points int) {
	if correct {
		s.CorrectCount++
	}
	s.TotalTimeUsed += timeUsed
	s.TotalPoints += points
}
