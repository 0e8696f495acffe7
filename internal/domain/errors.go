package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz does not exist in the catalog.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoQuestions indicates a quiz exists but carries no question set.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrAttemptNotFound is returned when no record exists for a
	// (user, quiz) pair. Callers treat this as "no prior attempt".
	ErrAttemptNotFound = errors.New("attempt record not found")
	// ErrIncompleteAnswers rejects a submission before any network call
	// when at least one question has no selection.
	ErrIncompleteAnswers = errors.New("all questions must be answered before submitting")
	// ErrUnknownQuestion rejects a selection for a question that is not
	// part of the loaded set.
	ErrUnknownQuestion = errors.New("question not part of this quiz")
	// ErrInvalidDates rejects a quiz whose end date precedes its start date.
	ErrInvalidDates = errors.New("end date must not precede the start date")
)
