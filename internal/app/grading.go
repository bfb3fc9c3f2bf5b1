package app

import (
	"sort"

	"classroom-quiz/internal/domain"
)

type graded struct {
	studentID string
	correct   bool
	timeUsed  float64
}

// grade evaluates every answer stored for q. Choice questions grade all known
// students; a student without a choice answer is wrong and charged maxTime.
// Input and matching questions grade only stored answers.
func grade(q domain.Question, answers map[string]*domain.Answer, known []string, maxTime float64) []graded {
	kind := q.Kind()

	ids := known
	if kind != domain.KindChoice {
		ids = make([]string, 0, len(answers))
		for id := range answers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}

	out := make([]graded, 0, len(ids))
	for _, id := range ids {
		a := answers[id]
		if a == nil || a.Kind != kind {
			out = append(out, graded{studentID: id, timeUsed: maxTime})
			continue
		}
		out = append(out, graded{studentID: id, correct: isCorrect(q, *a), timeUsed: a.TimeUsed})
	}
	return out
}

func isCorrect(q domain.Question, a domain.Answer) bool {
	switch q.Kind() {
	case domain.KindInput:
		return inputCorrect(q.Key.AcceptedAnswers, a.Value)
	case domain.KindMatching:
		n := len(q.Key.CorrectPairs)
		return n > 0 && len(a.Pairs) == n
	default:
		return sameSet(a.Indices, q.Key.CorrectIndices)
	}
}

func inputCorrect(accepted []string, value string) bool {
	got := domain.NormalizeText(value)
	for _, want := range accepted {
		if domain.NormalizeText(want) == got {
			return true
		}
	}
	return false
}

func sameSet(a, b []int) bool {
	left := toSet(a)
	right := toSet(b)
	if len(left) != len(right) {
		return false
	}
	for v := range left {
		if _, ok := right[v]; !ok {
			return false
		}
	}
	return true
}

func toSet(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
