package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrInvalidPacingWindow is returned when a daily target is requested for
	// a user whose exam date is today or in the past.
	ErrInvalidPacingWindow = errors.New("exam date must be in the future")
)

// CorrectAnswerCountError reports an ingestion record whose answers do not
// contain exactly one correct option.
type CorrectAnswerCountError struct {
	QuestionText string
	Count        int
}

func (e *CorrectAnswerCountError) Error() string {
	return fmt.Sprintf("expected 1 correct answer but got %d for question %q", e.Count, e.QuestionText)
}
