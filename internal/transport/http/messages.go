package http

import (
	"encoding/json"

	"classroom-quiz/internal/domain"
)

// Inbound event names.
const (
	eventJoin         = "join"
	eventMetaSet      = "meta:set"
	eventQuestionShow = "question:show"
	eventAnswer       = "answer"
	eventAnswerInput  = "answer:input"
	eventMatchAttempt = "match:attempt"
	eventReveal       = "reveal"
	eventFinish       = "finish"
	eventLeave        = "leave"

	// eventMatchResult answers a match:attempt to its sender only.
	eventMatchResult = "match:result"
)

type inboundMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ack     json.RawMessage `json:"ack,omitempty"`
}

type outboundMessage struct {
	Event   string          `json:"event"`
	Payload any             `json:"payload"`
	Ack     json.RawMessage `json:"ack,omitempty"`
}

type joinPayload struct {
	Pin     any                  `json:"pin"`
	Student *domain.StudentInput `json:"student"`
}

type metaPayload struct {
	Pin  any              `json:"pin"`
	Meta domain.MetaInput `json:"meta"`
}

type showPayload struct {
	Pin           any                   `json:"pin"`
	Question      *domain.QuestionInput `json:"question"`
	QuizID        any                   `json:"quizId"`
	QuestionIndex any                   `json:"questionIndex"`
}

type finishPayload struct {
	Pin     any             `json:"pin"`
	Payload json.RawMessage `json:"payload"`
}

type finishSummary struct {
	Total any `json:"total"`
}

type leavePayload struct {
	Pin       any `json:"pin"`
	StudentID any `json:"studentId"`
}

type matchResult struct {
	Correct bool `json:"correct"`
}

type leaderboardResponse struct {
	Pin         string                    `json:"pin"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}
