package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewChoiceSubmission(t *testing.T) {
	var in ChoiceInput
	require.NoError(t, json.Unmarshal([]byte(`{"studentId": "s1", "questionIndex": 2, "indices": [3, 1], "timeUsed": 4.5}`), &in))
	sub, ok := NewChoiceSubmission(in)
	require.True(t, ok)
	require.Equal(t, []int{3, 1}, sub.Indices)
	require.Equal(t, 2, sub.QuestionIndex)
	require.Equal(t, 4.5, sub.TimeUsed)
}

func TestNewChoiceSubmissionLegacyIndex(t *testing.T) {
	var in ChoiceInput
	require.NoError(t, json.Unmarshal([]byte(`{"studentId": 7, "answerIndex": 2, "timeUsed": "NaN"}`), &in))
	sub, ok := NewChoiceSubmission(in)
	require.True(t, ok)
	require.Equal(t, "7", sub.StudentID)
	require.Equal(t, []int{2}, sub.Indices)
	require.Zero(t, sub.TimeUsed)
}

func TestNewChoiceSubmissionRejectsMalformed(t *testing.T) {
	_, ok := NewChoiceSubmission(ChoiceInput{Indices: []any{float64(0)}})
	require.False(t, ok, "missing student")

	_, ok = NewChoiceSubmission(ChoiceInput{StudentID: "s1", Indices: "0"})
	require.False(t, ok, "no usable index")
}

func TestNewMatchAttempt(t *testing.T) {
	_, ok := NewMatchAttempt(MatchInput{StudentID: "s1", LeftIndex: float64(0)})
	require.False(t, ok)

	att, ok := NewMatchAttempt(MatchInput{StudentID: "s1", LeftIndex: float64(1), RightIndex: "2", TimeUsed: float64(3)})
	require.True(t, ok)
	require.Equal(t, 1, att.LeftIndex)
	require.Equal(t, 2, att.RightIndex)
}

func TestAnswerPairUses(t *testing.T) {
	a := Answer{Kind: KindMatching, Pairs: map[int]int{0: 2}}
	require.True(t, a.PairUses(0, 1))
	require.True(t, a.PairUses(1, 2))
	require.False(t, a.PairUses(1, 0))
}

func TestStudentIDIsTrimmedEverywhere(t *testing.T) {
	student, ok := NewStudent(&StudentInput{StudentID: " s1 "})
	require.True(t, ok)
	require.Equal(t, "s1", student.StudentID)

	choice, ok := NewChoiceSubmission(ChoiceInput{StudentID: " s1", AnswerIndex: float64(0)})
	require.True(t, ok)
	require.Equal(t, student.StudentID, choice.StudentID)

	input, ok := NewInputSubmission(InputAnswerInput{StudentID: "s1\t", Value: "x"})
	require.True(t, ok)
	require.Equal(t, student.StudentID, input.StudentID)

	match, ok := NewMatchAttempt(MatchInput{StudentID: " s1 ", LeftIndex: float64(0), RightIndex: float64(0)})
	require.True(t, ok)
	require.Equal(t, student.StudentID, match.StudentID)

	_, ok = NewInputSubmission(InputAnswerInput{StudentID: "   "})
	require.False(t, ok, "blank id")
}
