package domain

import "strings"

// DefaultDuration is the time limit, in seconds, used when a question omits one.
const DefaultDuration = 20

// QuestionType is the wire name of a question variant.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeTrueFalse      QuestionType = "true_false"
	TypeMatching       QuestionType = "matching"
	TypeInput          QuestionType = "input"
)

// Kind groups question types by how they are answered and graded.
type Kind int

const (
	KindChoice Kind = iota
	KindMatching
	KindInput
)

// KindOf maps a wire type onto its grading kind. Unknown types grade as choice.
func KindOf(t QuestionType) Kind {
	switch t {
	case TypeMatching:
		return KindMatching
	case TypeInput:
		return KindInput
	default:
		return KindChoice
	}
}

// MatchPair is one correct left/right association, identified by option text.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// AnswerKey holds the server-only grading data of a question.
// Only the fields matching the question kind are populated.
type AnswerKey struct {
	CorrectIndices  []int
	CorrectPairs    []MatchPair
	AcceptedAnswers []string
}

// Question is the private form of an active question, answer key included.
type Question struct {
	Index    int
	Number   int
	Total    int
	Type     QuestionType
	Text     string
	Image    string
	StartAt  int64
	Duration int

	Answers       []string
	AllowMultiple bool
	Left          []string
	Right         []string

	Key AnswerKey
}

// Kind reports the grading kind of the question.
func (q Question) Kind() Kind {
	return KindOf(q.Type)
}

// PublicQuestion is the only form of a question that is ever sent to students.
// It has no answer-key fields.
type PublicQuestion struct {
	QuestionIndex int          `json:"questionIndex"`
	Number        int          `json:"number"`
	Total         int          `json:"total"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	Image         string       `json:"image,omitempty"`
	StartAt       int64        `json:"startAt"`
	Duration      int          `json:"duration"`
	Answers       []string     `json:"answers,omitempty"`
	AllowMultiple bool         `json:"allowMultiple,omitempty"`
	Left          []string     `json:"left,omitempty"`
	Right         []string     `json:"right,omitempty"`
}

// Public strips the answer key.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		QuestionIndex: q.Index,
		Number:        q.Number,
		Total:         q.Total,
		Type:          q.Type,
		Text:          q.Text,
		Image:         q.Image,
		StartAt:       q.StartAt,
		Duration:      q.Duration,
		Answers:       q.Answers,
		AllowMultiple: q.AllowMultiple,
		Left:          q.Left,
		Right:         q.Right,
	}
}

// QuestionInput is a question definition exactly as a lecturer client or the
// question bank supplies it. Every field is coerced by NewQuestion.
type QuestionInput struct {
	QuestionIndex   any `json:"questionIndex"`
	Number          any `json:"number,omitempty"`
	Total           any `json:"total,omitempty"`
	Type            any `json:"type"`
	Text            any `json:"text"`
	Image           any `json:"image,omitempty"`
	StartAt         any `json:"startAt,omitempty"`
	Duration        any `json:"duration,omitempty"`
	Answers         any `json:"answers,omitempty"`
	AllowMultiple   any `json:"allowMultiple,omitempty"`
	CorrectIndices  any `json:"correctIndices,omitempty"`
	Left            any `json:"left,omitempty"`
	Right           any `json:"right,omitempty"`
	CorrectPairs    any `json:"correctPairs,omitempty"`
	AcceptedAnswers any `json:"acceptedAnswers,omitempty"`
}

// NewQuestion normalizes a raw definition. It never fails: malformed fields
// fall back to defaults so one bad payload cannot break a room.
func NewQuestion(in QuestionInput) Question {
	q := Question{
		Index:    Int(in.QuestionIndex, 0),
		Text:     String(in.Text),
		Image:    String(in.Image),
		StartAt:  Int64(in.StartAt, 0),
		Duration: Int(in.Duration, DefaultDuration),
	}
	if q.Duration <= 0 {
		q.Duration = DefaultDuration
	}
	q.Number = Int(in.Number, q.Index+1)
	q.Total = Int(in.Total, 0)

	switch QuestionType(String(in.Type)) {
	case TypeMatching:
		q.Type = TypeMatching
		q.Left = nonNil(Strings(in.Left))
		q.Right = nonNil(Strings(in.Right))
		q.Key.CorrectPairs = pairs(in.CorrectPairs)
	case TypeInput:
		q.Type = TypeInput
		q.Key.AcceptedAnswers = acceptedAnswers(in.AcceptedAnswers)
	case TypeTrueFalse:
		q.Type = TypeTrueFalse
		q.fillChoice(in)
	default:
		q.Type = TypeMultipleChoice
		q.fillChoice(in)
	}
	return q
}

func (q *Question) fillChoice(in QuestionInput) {
	q.Answers = nonNil(Strings(in.Answers))
	q.AllowMultiple = Bool(in.AllowMultiple)
	q.Key.CorrectIndices = Ints(in.CorrectIndices)
}

// RevealInput is the lecturer's reveal request for the active question.
type RevealInput struct {
	Pin             any `json:"pin"`
	QuestionIndex   any `json:"questionIndex"`
	Type            any `json:"type"`
	CorrectIndices  any `json:"correctIndices"`
	CorrectPairs    any `json:"correctPairs"`
	AcceptedAnswers any `json:"acceptedAnswers"`
}

// Key builds the answer key for a question of the given kind. The second
// result is false when the request carries no key for that kind.
func (in RevealInput) Key(kind Kind) (AnswerKey, bool) {
	switch kind {
	case KindMatching:
		if in.CorrectPairs == nil {
			return AnswerKey{}, false
		}
		return AnswerKey{CorrectPairs: pairs(in.CorrectPairs)}, true
	case KindInput:
		if in.AcceptedAnswers == nil {
			return AnswerKey{}, false
		}
		return AnswerKey{AcceptedAnswers: acceptedAnswers(in.AcceptedAnswers)}, true
	default:
		if in.CorrectIndices == nil {
			return AnswerKey{}, false
		}
		return AnswerKey{CorrectIndices: Ints(in.CorrectIndices)}, true
	}
}

// IndexPairs resolves the text-based correct pairs of a matching question to
// left/right option indices. Each option index is consumed at most once so
// duplicate option texts map onto distinct positions.
func (q Question) IndexPairs() map[int]int {
	out := make(map[int]int, len(q.Key.CorrectPairs))
	usedRight := make(map[int]bool, len(q.Key.CorrectPairs))
	for _, p := range q.Key.CorrectPairs {
		l := indexOf(q.Left, p.Left, func(i int) bool { _, taken := out[i]; return taken })
		r := indexOf(q.Right, p.Right, func(i int) bool { return usedRight[i] })
		if l < 0 || r < 0 {
			continue
		}
		out[l] = r
		usedRight[r] = true
	}
	return out
}

func indexOf(options []string, text string, taken func(int) bool) int {
	for i, opt := range options {
		if opt == text && !taken(i) {
			return i
		}
	}
	return -1
}

func pairs(v any) []MatchPair {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]MatchPair, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, MatchPair{Left: String(obj["left"]), Right: String(obj["right"])})
	}
	return out
}

func acceptedAnswers(v any) []string {
	raw := Strings(v)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// NormalizeText is the comparison form of free-text answers.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
