package domain

import "errors"

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrChoiceNotFound   = errors.New("choice not found")
	ErrVotingClosed     = errors.New("question is not open for voting")
	ErrUnauthorized     = errors.New("unauthorized")
)

// ValidationError reports input the caller can correct. Nothing is persisted
// when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ErrNoChoiceSelected is returned when a vote names no choice, or one that does
// not belong to the question.
var ErrNoChoiceSelected = &ValidationError{Field: "choice", Message: "You didn't select a choice."}
