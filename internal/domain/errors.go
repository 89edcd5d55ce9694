package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a practice session has not been started.
	ErrSessionNotFound = errors.New("practice session not found")
	// ErrAssignmentNotFound indicates the question set could not be loaded.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrQuestionNotFound indicates a submitted content item ID is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrEmptyQuestionSet indicates an assignment with no questions.
	ErrEmptyQuestionSet = errors.New("assignment has no questions")
)
