package domain

import "time"

// Student represents a room participant as shown to other clients.
type Student struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
}

// StudentInput is the raw student block of a join request.
type StudentInput struct {
	StudentID any `json:"studentId"`
	Name      any `json:"name"`
	Avatar    any `json:"avatar"`
}

// NewStudent validates a raw student. A student without an id is rejected.
func NewStudent(in *StudentInput) (Student, bool) {
	if in == nil {
		return Student{}, false
	}
	s := Student{
		StudentID: StudentID(in.StudentID),
		Name:      String(in.Name),
		Avatar:    String(in.Avatar),
	}
	if s.Name == "" {
		s.Name = s.StudentID
	}
	return s, s.StudentID != ""
}

// Meta holds the descriptive fields a lecturer attaches to a session.
type Meta struct {
	QuizTitle  string `json:"quizTitle,omitempty"`
	CourseCode string `json:"courseCode,omitempty"`
	CourseName string `json:"courseName,omitempty"`
	Section    string `json:"section,omitempty"`
	Semester   string `json:"semester,omitempty"`
}

// MetaInput is the raw metadata block of a meta:set request.
type MetaInput struct {
	QuizTitle  any `json:"quizTitle"`
	CourseCode any `json:"courseCode"`
	CourseName any `json:"courseName"`
	Section    any `json:"section"`
	Semester   any `json:"semester"`
}

// Merge overlays the non-empty fields of in onto m.
func (m Meta) Merge(in MetaInput) Meta {
	set := func(dst *string, v any) {
		if s := String(v); s != "" {
			*dst = s
		}
	}
	set(&m.QuizTitle, in.QuizTitle)
	set(&m.CourseCode, in.CourseCode)
	set(&m.CourseName, in.CourseName)
	set(&m.Section, in.Section)
	set(&m.Semester, in.Semester)
	return m
}

// Quiz is a stored question set that lecturers can show by reference.
type Quiz struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Questions []QuestionInput `json:"questions"`
}

// FinalResults is the end-of-session summary handed to result sinks.
type FinalResults struct {
	Pin         string             `json:"pin"`
	Total       int                `json:"total"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	FinishedAt  time.Time          `json:"finishedAt"`
}
