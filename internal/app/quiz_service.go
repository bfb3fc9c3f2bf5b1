package app

import (
	"context"

	"classroom-quiz/internal/domain"
	"github.com/sirupsen/logrus"
)

// RoomRepository abstracts how live rooms are held (in-memory, Redis-aware, etc).
// Use runs fn on the room of pin, creating it on first reference; the room
// must not be evicted while fn runs, so a mutation never lands on a room
// that DeleteIfIdle has already dropped.
type RoomRepository interface {
	Use(pin string, fn func(*Room))
	Get(pin string) (*Room, bool)
	DeleteIfIdle(pin string)
}

// QuestionBank loads stored quizzes for show-by-reference.
type QuestionBank interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultSink receives the final results of a finished session.
type ResultSink interface {
	SaveResults(ctx context.Context, results domain.FinalResults) error
}

// QuizService routes room events by PIN. Malformed input and failed
// preconditions never surface as errors: they are ignored and logged.
type QuizService struct {
	rooms RoomRepository
	bank  QuestionBank
	sinks []ResultSink
	log   logrus.FieldLogger
}

func NewQuizService(rooms RoomRepository, bank QuestionBank, log logrus.FieldLogger, sinks ...ResultSink) *QuizService {
	return &QuizService{rooms: rooms, bank: bank, sinks: sinks, log: log}
}

// Join subscribes a connection to a room, registering the student if one is
// given. The caller must invoke the returned cancel function and then Release.
func (s *QuizService) Join(_ context.Context, pin string, student *domain.Student) (<-chan domain.Event, func()) {
	var (
		events <-chan domain.Event
		cancel func()
	)
	s.rooms.Use(pin, func(room *Room) {
		events, cancel = room.join(student)
	})
	if student != nil {
		s.log.WithFields(logrus.Fields{"pin": pin, "studentId": student.StudentID}).Debug("student joined")
	}
	return events, cancel
}

// Release drops the room once nobody observes it any more.
func (s *QuizService) Release(pin string) {
	s.rooms.DeleteIfIdle(pin)
}

// Leave erases a student from the room.
func (s *QuizService) Leave(_ context.Context, pin, studentID string) {
	room, ok := s.rooms.Get(pin)
	if !ok || studentID == "" {
		return
	}
	room.leave(studentID)
	s.log.WithFields(logrus.Fields{"pin": pin, "studentId": studentID}).Debug("student left")
	s.rooms.DeleteIfIdle(pin)
}

// SetMeta merges session metadata and broadcasts it.
func (s *QuizService) SetMeta(_ context.Context, pin string, in domain.MetaInput) domain.Meta {
	var meta domain.Meta
	s.rooms.Use(pin, func(room *Room) {
		meta = room.setMeta(in)
	})
	return meta
}

// ShowQuestion normalizes a question definition and makes it active.
func (s *QuizService) ShowQuestion(_ context.Context, pin string, in domain.QuestionInput) domain.PublicQuestion {
	q := domain.NewQuestion(in)
	s.log.WithFields(logrus.Fields{"pin": pin, "questionIndex": q.Index, "type": q.Type}).Info("question shown")
	var public domain.PublicQuestion
	s.rooms.Use(pin, func(room *Room) {
		public = room.showQuestion(q)
	})
	return public
}

// ShowFromBank shows question index of a stored quiz.
func (s *QuizService) ShowFromBank(ctx context.Context, pin, quizID string, index int) (domain.PublicQuestion, error) {
	if s.bank == nil {
		return domain.PublicQuestion{}, domain.ErrQuizNotFound
	}
	quiz, err := s.bank.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.PublicQuestion{}, err
	}
	if index < 0 || index >= len(quiz.Questions) {
		return domain.PublicQuestion{}, domain.ErrQuestionNotFound
	}
	in := quiz.Questions[index]
	in.QuestionIndex = float64(index)
	if in.Number == nil {
		in.Number = float64(index + 1)
	}
	if in.Total == nil {
		in.Total = float64(len(quiz.Questions))
	}
	return s.ShowQuestion(ctx, pin, in), nil
}

// SubmitChoice records a choice answer. It reports false for repeats.
func (s *QuizService) SubmitChoice(_ context.Context, pin string, sub domain.ChoiceSubmission) bool {
	var accepted bool
	s.rooms.Use(pin, func(room *Room) {
		accepted = room.submitChoice(sub)
	})
	if !accepted {
		s.ignored(pin, sub.StudentID, "choice answer already recorded")
	}
	return accepted
}

// SubmitInput records a free-text answer. It reports false for repeats.
func (s *QuizService) SubmitInput(_ context.Context, pin string, sub domain.InputSubmission) bool {
	var accepted bool
	s.rooms.Use(pin, func(room *Room) {
		accepted = room.submitInput(sub)
	})
	if !accepted {
		s.ignored(pin, sub.StudentID, "input answer already recorded")
	}
	return accepted
}

// AttemptMatch checks one matching pair and returns the verdict to the caller.
func (s *QuizService) AttemptMatch(_ context.Context, pin string, att domain.MatchAttempt) bool {
	room, ok := s.rooms.Get(pin)
	if !ok {
		return false
	}
	return room.attemptMatch(att)
}

// Reveal publishes the answer key and grades the active question exactly once.
func (s *QuizService) Reveal(_ context.Context, pin string, in domain.RevealInput) bool {
	room, ok := s.rooms.Get(pin)
	if !ok {
		return false
	}
	revealed := room.reveal(in)
	if revealed {
		s.log.WithFields(logrus.Fields{"pin": pin, "questionIndex": domain.Int(in.QuestionIndex, 0)}).Info("question revealed")
	} else {
		s.ignored(pin, "", "reveal without matching unscored question")
	}
	return revealed
}

// Finish broadcasts the final results and hands them to every result sink.
// Sink failures are logged; they never affect the room.
func (s *QuizService) Finish(ctx context.Context, pin string, total int, raw domain.QuizFinished) domain.FinalResults {
	var results domain.FinalResults
	s.rooms.Use(pin, func(room *Room) {
		results = room.finish(total, raw)
	})
	s.log.WithFields(logrus.Fields{"pin": pin, "students": len(results.Leaderboard)}).Info("quiz finished")
	for _, sink := range s.sinks {
		if err := sink.SaveResults(ctx, results); err != nil {
			s.log.WithError(err).WithField("pin", pin).Warn("save results")
		}
	}
	return results
}

// Leaderboard returns the ranked board of a live room.
func (s *QuizService) Leaderboard(_ context.Context, pin string) ([]domain.LeaderboardEntry, error) {
	room, ok := s.rooms.Get(pin)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room.Leaderboard(), nil
}

func (s *QuizService) ignored(pin, studentID, reason string) {
	entry := s.log.WithField("pin", pin)
	if studentID != "" {
		entry = entry.WithField("studentId", studentID)
	}
	entry.Debug(reason)
}
