package domain

import (
	"math"
	"testing"
)

func TestCalcPoints(t *testing.T) {
	cases := []struct {
		name     string
		correct  bool
		maxTime  float64
		timeUsed float64
		want     int
	}{
		{"wrong answer", false, 20, 5, 0},
		{"fast correct", true, 20, 5, 150},
		{"over time clamps to zero", true, 20, 25, 0},
		{"fractional time floors", true, 10, 3.9, 70},
		{"negative time counts as zero", true, 10, -4, 100},
		{"non-finite time counts as zero", true, 10, math.Inf(1), 100},
		{"fractional max floors", true, 10.8, 0, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalcPoints(tc.correct, tc.maxTime, tc.timeUsed); got != tc.want {
				t.Fatalf("CalcPoints(%v, %v, %v) = %d, want %d", tc.correct, tc.maxTime, tc.timeUsed, got, tc.want)
			}
		})
	}
}

func TestScoreAdd(t *testing.T) {
	var s Score
	s.Add(true, 3, 70)
	s.Add(false, 10, 0)
	if s.CorrectCount != 1 || s.TotalTimeUsed != 13 || s.TotalPoints != 70 {
		t.Fatalf("unexpected score %+v", s)
	}
}
