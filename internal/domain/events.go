package domain

import "encoding/json"

// Outbound event names.
const (
	EventSessionMeta       = "session:meta"
	EventStudentsUpdate    = "students:update"
	EventQuestionShow      = "question:show"
	EventAnswerCount       = "answer:count"
	EventAnswerReveal      = "answer:reveal"
	EventLeaderboardUpdate = "leaderboard:update"
	EventFinalResults      = "final_results"
	EventQuizFinished      = "quiz:finished"
)

// TallyBuckets is the number of choices counted by the live tally.
const TallyBuckets = 4

// Event is a named payload broadcast to every connection in a room.
type Event struct {
	Name    string
	Payload any
}

// AnswerCount is the live tally of choice submissions.
type AnswerCount struct {
	QuestionIndex int               `json:"questionIndex"`
	Counts        [TallyBuckets]int `json:"counts"`
	TotalAnswers  int               `json:"totalAnswers"`
}

// AnswerReveal publishes the answer key once grading starts.
type AnswerReveal struct {
	QuestionIndex   int          `json:"questionIndex"`
	Type            QuestionType `json:"type"`
	CorrectIndices  []int        `json:"correctIndices,omitempty"`
	CorrectPairs    []MatchPair  `json:"correctPairs,omitempty"`
	AcceptedAnswers []string     `json:"acceptedAnswers,omitempty"`
	MaxTime         int          `json:"maxTime"`
}

// LeaderboardUpdate carries the full ranked board.
type LeaderboardUpdate struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// StudentsUpdate carries the full membership list.
type StudentsUpdate struct {
	Students []Student `json:"students"`
}

// QuizFinished is passed through to clients untouched.
type QuizFinished json.RawMessage

// MarshalJSON emits the raw payload, or null when empty.
func (q QuizFinished) MarshalJSON() ([]byte, error) {
	if len(q) == 0 {
		return []byte("null"), nil
	}
	return q, nil
}
