package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeQuestion(t *testing.T, raw string) QuestionInput {
	t.Helper()
	var in QuestionInput
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	return in
}

func TestNewQuestionChoiceDefaults(t *testing.T) {
	q := NewQuestion(decodeQuestion(t, `{
		"questionIndex": "oops",
		"duration": -3,
		"text": 42,
		"answers": ["a", 2, true, {"x": 1}],
		"allowMultiple": "true",
		"correctIndices": [1, "2", 1.5, -1, null, "x"]
	}`))

	require.Equal(t, 0, q.Index)
	require.Equal(t, 1, q.Number)
	require.Equal(t, DefaultDuration, q.Duration)
	require.Equal(t, TypeMultipleChoice, q.Type)
	require.Equal(t, "42", q.Text)
	require.Equal(t, []string{"a", "2", "true", ""}, q.Answers)
	require.True(t, q.AllowMultiple)
	require.Equal(t, []int{1, 2}, q.Key.CorrectIndices)
}

func TestNewQuestionUnknownTypeIsChoice(t *testing.T) {
	q := NewQuestion(decodeQuestion(t, `{"type": "poll", "questionIndex": 4, "duration": 30, "answers": "nope"}`))
	require.Equal(t, TypeMultipleChoice, q.Type)
	require.Equal(t, KindChoice, q.Kind())
	require.Equal(t, 4, q.Index)
	require.Equal(t, 30, q.Duration)
	require.Empty(t, q.Answers)
}

func TestNewQuestionInputFiltersBlankAnswers(t *testing.T) {
	q := NewQuestion(decodeQuestion(t, `{"type": "input", "acceptedAnswers": ["Paris", "  ", "", "paris "]}`))
	require.Equal(t, KindInput, q.Kind())
	require.Equal(t, []string{"Paris", "paris "}, q.Key.AcceptedAnswers)
}

func TestNewQuestionMatching(t *testing.T) {
	q := NewQuestion(decodeQuestion(t, `{
		"type": "matching",
		"left": ["A", "B", "A"],
		"right": ["1", "2", "1"],
		"correctPairs": [{"left": "A", "right": "1"}, "junk", {"left": "B", "right": "2"}, {"left": "A", "right": "1"}]
	}`))
	require.Equal(t, KindMatching, q.Kind())
	require.Len(t, q.Key.CorrectPairs, 3)

	// Duplicate texts resolve to distinct positions.
	require.Equal(t, map[int]int{0: 0, 1: 1, 2: 2}, q.IndexPairs())
}

func TestPublicQuestionHasNoKey(t *testing.T) {
	q := NewQuestion(decodeQuestion(t, `{
		"type": "matching",
		"left": ["A"], "right": ["1"],
		"correctPairs": [{"left": "A", "right": "1"}],
		"correctIndices": [0],
		"acceptedAnswers": ["x"]
	}`))
	data, err := json.Marshal(q.Public())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"correctPairs", "correctIndices", "acceptedAnswers"} {
		require.NotContains(t, fields, key)
	}
}

func TestRevealKey(t *testing.T) {
	var in RevealInput
	require.NoError(t, json.Unmarshal([]byte(`{"questionIndex": 0, "correctIndices": [2, 0]}`), &in))

	key, ok := in.Key(KindChoice)
	require.True(t, ok)
	require.Equal(t, []int{2, 0}, key.CorrectIndices)

	_, ok = in.Key(KindInput)
	require.False(t, ok)
}
