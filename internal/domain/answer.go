package domain

// Answer is one student's stored answer for one question. Kind selects which
// of the variant fields are meaningful.
type Answer struct {
	Kind     Kind
	Indices  []int       // KindChoice
	Value    string      // KindInput
	Pairs    map[int]int // KindMatching: left index -> right index, confirmed correct
	TimeUsed float64
}

// FirstIndex returns the first selected choice, used for the live tally.
func (a Answer) FirstIndex() (int, bool) {
	if a.Kind != KindChoice || len(a.Indices) == 0 {
		return 0, false
	}
	return a.Indices[0], true
}

// PairUses reports whether left or right already belongs to a confirmed pair.
func (a Answer) PairUses(left, right int) bool {
	for l, r := range a.Pairs {
		if l == left || r == right {
			return true
		}
	}
	return false
}

// ChoiceInput is the raw payload of a choice answer. Indices is preferred;
// AnswerIndex is the single-index form older clients still send.
type ChoiceInput struct {
	Pin           any `json:"pin"`
	StudentID     any `json:"studentId"`
	QuestionIndex any `json:"questionIndex"`
	Indices       any `json:"indices"`
	AnswerIndex   any `json:"answerIndex"`
	TimeUsed      any `json:"timeUsed"`
}

// ChoiceSubmission is a validated choice answer.
type ChoiceSubmission struct {
	StudentID     string
	QuestionIndex int
	Indices       []int
	TimeUsed      float64
}

// NewChoiceSubmission validates a raw choice answer. It reports false when the
// student or every selected index is missing.
func NewChoiceSubmission(in ChoiceInput) (ChoiceSubmission, bool) {
	sub := ChoiceSubmission{
		StudentID:     StudentID(in.StudentID),
		QuestionIndex: Int(in.QuestionIndex, 0),
		TimeUsed:      Seconds(in.TimeUsed),
	}
	if sub.StudentID == "" {
		return sub, false
	}
	sub.Indices = Ints(in.Indices)
	if len(sub.Indices) == 0 {
		idx := Int(in.AnswerIndex, -1)
		if idx < 0 {
			return sub, false
		}
		sub.Indices = []int{idx}
	}
	return sub, true
}

// InputAnswerInput is the raw payload of a free-text answer.
type InputAnswerInput struct {
	Pin           any `json:"pin"`
	StudentID     any `json:"studentId"`
	QuestionIndex any `json:"questionIndex"`
	Value         any `json:"value"`
	TimeUsed      any `json:"timeUsed"`
}

// InputSubmission is a validated free-text answer.
type InputSubmission struct {
	StudentID     string
	QuestionIndex int
	Value         string
	TimeUsed      float64
}

// NewInputSubmission validates a raw free-text answer.
func NewInputSubmission(in InputAnswerInput) (InputSubmission, bool) {
	sub := InputSubmission{
		StudentID:     StudentID(in.StudentID),
		QuestionIndex: Int(in.QuestionIndex, 0),
		Value:         String(in.Value),
		TimeUsed:      Seconds(in.TimeUsed),
	}
	return sub, sub.StudentID != ""
}

// MatchInput is the raw payload of a matching attempt.
type MatchInput struct {
	Pin           any `json:"pin"`
	StudentID     any `json:"studentId"`
	QuestionIndex any `json:"questionIndex"`
	LeftIndex     any `json:"leftIndex"`
	RightIndex    any `json:"rightIndex"`
	TimeUsed      any `json:"timeUsed"`
}

// MatchAttempt is a validated matching attempt.
type MatchAttempt struct {
	StudentID     string
	QuestionIndex int
	LeftIndex     int
	RightIndex    int
	TimeUsed      float64
}

// NewMatchAttempt validates a raw matching attempt. Missing indices make it invalid.
func NewMatchAttempt(in MatchInput) (MatchAttempt, bool) {
	att := MatchAttempt{
		StudentID:     StudentID(in.StudentID),
		QuestionIndex: Int(in.QuestionIndex, 0),
		LeftIndex:     Int(in.LeftIndex, -1),
		RightIndex:    Int(in.RightIndex, -1),
		TimeUsed:      Seconds(in.TimeUsed),
	}
	ok := att.StudentID != "" && att.LeftIndex >= 0 && att.RightIndex >= 0
	return att, ok
}
