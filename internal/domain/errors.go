package domain

import "errors"

var (
	// ErrRoomNotFound is returned when no room exists for a PIN.
	ErrRoomNotFound = errors.New("room not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question index outside the loaded quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrMissingPin marks events that name no room; the transport logs and drops them.
	ErrMissingPin = errors.New("missing pin")
)
