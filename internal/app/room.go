package app

import (
	"sort"
	"sync"
	"time"

	"classroom-quiz/internal/domain"
)

// subscriberBuffer bounds the events queued for one slow connection.
const subscriberBuffer = 64

// Room is the in-memory state of one live quiz session, keyed by PIN.
// Every mutation runs under mu, which keeps the already-answered,
// already-paired and already-scored checks atomic with their writes.
type Room struct {
	pin string
	now func() time.Time

	mu        sync.Mutex
	meta      domain.Meta
	hasMeta   bool
	students  map[string]domain.Student
	current   *domain.Question
	answers   map[int]map[string]*domain.Answer
	scored    map[int]struct{}
	scores    map[string]*domain.Score
	durations map[int]int
	results   *domain.FinalResults

	subscribers map[chan domain.Event]struct{}
}

// NewRoom is exported for infrastructure layers that own the room map.
func NewRoom(pin string) *Room {
	return NewRoomWithClock(pin, time.Now)
}

// NewRoomWithClock allows deterministic timestamps in tests.
func NewRoomWithClock(pin string, now func() time.Time) *Room {
	return &Room{
		pin:         pin,
		now:         now,
		students:    make(map[string]domain.Student),
		answers:     make(map[int]map[string]*domain.Answer),
		scored:      make(map[int]struct{}),
		scores:      make(map[string]*domain.Score),
		durations:   make(map[int]int),
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// Pin returns the room identifier.
func (r *Room) Pin() string {
	return r.pin
}

// IsIdle reports whether the room holds nothing worth keeping: no
// connections, no students or scores, no meta, no active question and no
// final results. Only idle rooms may be evicted.
func (r *Room) IsIdle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribers) == 0 &&
		len(r.students) == 0 &&
		len(r.scores) == 0 &&
		!r.hasMeta &&
		r.current == nil &&
		r.results == nil
}

// join registers an optional student and subscribes the caller. The returned
// channel starts with a catch-up snapshot: meta, the public question with its
// tally, the membership list and the leaderboard.
func (r *Room) join(student *domain.Student) (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, subscriberBuffer)

	r.mu.Lock()
	if student != nil {
		r.students[student.StudentID] = *student
		r.scoreLocked(student.StudentID)
	}
	if r.hasMeta {
		ch <- domain.Event{Name: domain.EventSessionMeta, Payload: r.meta}
	}
	if r.current != nil {
		ch <- domain.Event{Name: domain.EventQuestionShow, Payload: r.current.Public()}
		ch <- domain.Event{Name: domain.EventAnswerCount, Payload: r.tallyLocked(r.current.Index)}
	}
	ch <- domain.Event{Name: domain.EventStudentsUpdate, Payload: r.membersLocked()}
	ch <- domain.Event{Name: domain.EventLeaderboardUpdate, Payload: r.boardLocked()}
	if r.results != nil {
		ch <- domain.Event{Name: domain.EventFinalResults, Payload: *r.results}
	}
	if student != nil {
		r.broadcastLocked(domain.EventStudentsUpdate, r.membersLocked())
		r.broadcastLocked(domain.EventLeaderboardUpdate, r.boardLocked())
	}
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

// leave erases every trace of a student.
func (r *Room) leave(studentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.students, studentID)
	delete(r.scores, studentID)
	for _, byStudent := range r.answers {
		delete(byStudent, studentID)
	}
	r.broadcastLocked(domain.EventStudentsUpdate, r.membersLocked())
	r.broadcastLocked(domain.EventLeaderboardUpdate, r.boardLocked())
}

func (r *Room) setMeta(in domain.MetaInput) domain.Meta {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.meta = r.meta.Merge(in)
	r.hasMeta = true
	r.broadcastLocked(domain.EventSessionMeta, r.meta)
	return r.meta
}

// showQuestion makes q the active question and resets its answer storage.
func (r *Room) showQuestion(q domain.Question) domain.PublicQuestion {
	r.mu.Lock()
	defer r.mu.Unlock()

	if q.StartAt == 0 {
		q.StartAt = r.now().UnixMilli()
	}
	r.current = &q
	r.answers[q.Index] = make(map[string]*domain.Answer)
	delete(r.scored, q.Index)
	r.durations[q.Index] = q.Duration
	r.results = nil

	public := q.Public()
	r.broadcastLocked(domain.EventQuestionShow, public)
	r.broadcastLocked(domain.EventAnswerCount, r.tallyLocked(q.Index))
	return public
}

// submitChoice stores the first choice answer of a student and broadcasts the tally.
func (r *Room) submitChoice(sub domain.ChoiceSubmission) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	byStudent := r.answersLocked(sub.QuestionIndex)
	if _, answered := byStudent[sub.StudentID]; answered {
		return false
	}
	byStudent[sub.StudentID] = &domain.Answer{
		Kind:     domain.KindChoice,
		Indices:  append([]int(nil), sub.Indices...),
		TimeUsed: sub.TimeUsed,
	}
	r.scoreLocked(sub.StudentID)
	r.broadcastLocked(domain.EventAnswerCount, r.tallyLocked(sub.QuestionIndex))
	return true
}

// submitInput stores the first free-text answer of a student. No tally is sent.
func (r *Room) submitInput(sub domain.InputSubmission) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	byStudent := r.answersLocked(sub.QuestionIndex)
	if _, answered := byStudent[sub.StudentID]; answered {
		return false
	}
	byStudent[sub.StudentID] = &domain.Answer{
		Kind:     domain.KindInput,
		Value:    sub.Value,
		TimeUsed: sub.TimeUsed,
	}
	r.scoreLocked(sub.StudentID)
	return true
}

// attemptMatch checks one proposed pair against the active matching question
// and merges it into the student's record when correct.
func (r *Room) attemptMatch(att domain.MatchAttempt) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := r.current
	if q == nil || q.Kind() != domain.KindMatching || q.Index != att.QuestionIndex {
		return false
	}
	if att.LeftIndex >= len(q.Left) || att.RightIndex >= len(q.Right) {
		return false
	}

	byStudent := r.answersLocked(q.Index)
	record := byStudent[att.StudentID]
	if record != nil && (record.Kind != domain.KindMatching || record.PairUses(att.LeftIndex, att.RightIndex)) {
		return false
	}

	right, ok := q.IndexPairs()[att.LeftIndex]
	if !ok || right != att.RightIndex {
		return false
	}

	if record == nil {
		record = &domain.Answer{Kind: domain.KindMatching, Pairs: make(map[int]int)}
		byStudent[att.StudentID] = record
	}
	record.Pairs[att.LeftIndex] = att.RightIndex
	record.TimeUsed = att.TimeUsed
	r.scoreLocked(att.StudentID)
	return true
}

// reveal publishes the answer key and grades the active question once.
func (r *Room) reveal(in domain.RevealInput) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := r.current
	if q == nil || q.Index != domain.Int(in.QuestionIndex, 0) {
		return false
	}
	if _, done := r.scored[q.Index]; done {
		return false
	}

	if key, ok := in.Key(q.Kind()); ok {
		q.Key = key
	}
	maxTime, ok := r.durations[q.Index]
	if !ok {
		maxTime = q.Duration
	}
	r.broadcastLocked(domain.EventAnswerReveal, domain.AnswerReveal{
		QuestionIndex:   q.Index,
		Type:            q.Type,
		CorrectIndices:  q.Key.CorrectIndices,
		CorrectPairs:    q.Key.CorrectPairs,
		AcceptedAnswers: q.Key.AcceptedAnswers,
		MaxTime:         maxTime,
	})

	r.scored[q.Index] = struct{}{}
	for _, g := range grade(*q, r.answersLocked(q.Index), r.knownStudentsLocked(), float64(maxTime)) {
		points := domain.CalcPoints(g.correct, float64(maxTime), g.timeUsed)
		r.scoreLocked(g.studentID).Add(g.correct, g.timeUsed, points)
	}

	r.broadcastLocked(domain.EventLeaderboardUpdate, r.boardLocked())
	return true
}

// finish broadcasts the final board and the lecturer's raw finish payload.
func (r *Room) finish(total int, raw domain.QuizFinished) domain.FinalResults {
	r.mu.Lock()
	defer r.mu.Unlock()

	if total <= 0 {
		total = len(r.scored)
		if r.current != nil && r.current.Total > total {
			total = r.current.Total
		}
	}
	results := domain.FinalResults{
		Pin:         r.pin,
		Total:       total,
		Leaderboard: r.leaderboardLocked(),
		FinishedAt:  r.now(),
	}
	r.results = &results
	r.broadcastLocked(domain.EventFinalResults, results)
	r.broadcastLocked(domain.EventQuizFinished, raw)
	return results
}

// Leaderboard returns the current ranked board.
func (r *Room) Leaderboard() []domain.LeaderboardEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaderboardLocked()
}

// Score returns a copy of a student's cumulative score.
func (r *Room) Score(studentID string) (domain.Score, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scores[studentID]
	if !ok {
		return domain.Score{}, false
	}
	return *s, true
}

// IsScored reports whether the question index has been graded.
func (r *Room) IsScored(questionIndex int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.scored[questionIndex]
	return ok
}

// Answer returns a copy of the stored answer of a student.
func (r *Room) Answer(questionIndex int, studentID string) (domain.Answer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.answers[questionIndex][studentID]
	if !ok {
		return domain.Answer{}, false
	}
	return *a, true
}

func (r *Room) answersLocked(questionIndex int) map[string]*domain.Answer {
	byStudent, ok := r.answers[questionIndex]
	if !ok {
		byStudent = make(map[string]*domain.Answer)
		r.answers[questionIndex] = byStudent
	}
	return byStudent
}

func (r *Room) scoreLocked(studentID string) *domain.Score {
	s, ok := r.scores[studentID]
	if !ok {
		s = &domain.Score{}
		r.scores[studentID] = s
	}
	return s
}

func (r *Room) knownStudentsLocked() []string {
	ids := make([]string, 0, len(r.scores))
	for id := range r.scores {
		ids = append(ids, id)
	}
	for id := range r.students {
		if _, ok := r.scores[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (r *Room) tallyLocked(questionIndex int) domain.AnswerCount {
	count := domain.AnswerCount{QuestionIndex: questionIndex}
	for _, a := range r.answers[questionIndex] {
		count.TotalAnswers++
		if first, ok := a.FirstIndex(); ok && first < domain.TallyBuckets {
			count.Counts[first]++
		}
	}
	return count
}

func (r *Room) membersLocked() domain.StudentsUpdate {
	students := make([]domain.Student, 0, len(r.students))
	for _, s := range r.students {
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool {
		return students[i].StudentID < students[j].StudentID
	})
	return domain.StudentsUpdate{Students: students}
}

func (r *Room) leaderboardLocked() []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(r.scores))
	for id, s := range r.scores {
		entry := domain.LeaderboardEntry{
			StudentID:     id,
			Name:          id,
			CorrectCount:  s.CorrectCount,
			TotalTimeUsed: s.TotalTimeUsed,
			TotalPoints:   s.TotalPoints,
		}
		if student, ok := r.students[id]; ok {
			entry.Name = student.Name
			entry.Avatar = student.Avatar
		}
		entries = append(entries, entry)
	}
	return domain.Rank(entries)
}

func (r *Room) boardLocked() domain.LeaderboardUpdate {
	return domain.LeaderboardUpdate{Leaderboard: r.leaderboardLocked()}
}

func (r *Room) broadcastLocked(name string, payload any) {
	ev := domain.Event{Name: name, Payload: payload}
	for ch := range r.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow client: drop its oldest queued event instead of blocking the room.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
