package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrConstraint         = errors.New("constraint violation")
	ErrInvalidRole        = errors.New("role must be teacher or student")
	ErrInvalidEmail       = errors.New("email is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrFetcherMissing     = errors.New("question fetcher is not configured")
	ErrQuestionsFetch     = errors.New("fetch questions")
)

// StoreError reports a single failed statement. Statement and Args are kept
// for diagnosis; callers must not parse Error() output.
type StoreError struct {
	Op        string
	Statement string
	Args      []any
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v (statement=%q args=%v)", e.Op, e.Err, e.Statement, e.Args)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// InitializationError means the storage engine could not be opened or a
// schema statement was rejected. It is not recoverable.
type InitializationError struct {
	Statement string
	Err       error
}

func (e *InitializationError) Error() string {
	if e.Statement == "" {
		return fmt.Sprintf("initialize store: %v", e.Err)
	}
	return fmt.Sprintf("initialize store: %v (statement=%q)", e.Err, e.Statement)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// ValidationError lists every problem found in a submitted quiz.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid quiz: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid quiz: %d problems, first: %s", len(e.Problems), e.Problems[0])
}
