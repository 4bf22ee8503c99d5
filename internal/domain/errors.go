package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid or
	// belongs to a different quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates the selected option index is out of range.
	ErrOptionNotFound = errors.New("option not found")
	// ErrParticipantNotFound is returned when a user tries to act before joining.
	ErrParticipantNotFound = errors.New("participant not found in quiz")
	// ErrDuplicateSubmission means this participant already answered this
	// question. Safe to ignore on the client; the stored answer stands.
	ErrDuplicateSubmission = errors.New("answer already submitted")
	// ErrQuizNotLive is returned for submissions before start or after end.
	ErrQuizNotLive = errors.New("quiz is not live")
	// ErrQuizEnded guards phase transitions on an ended quiz.
	ErrQuizEnded = errors.New("quiz already ended")
	// ErrPartialCommit means an answer was persisted but the score increment
	// failed and could not be reconciled. The ledger remains authoritative.
	ErrPartialCommit = errors.New("answer recorded but score not applied")
)
