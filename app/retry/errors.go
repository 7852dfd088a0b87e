package retry

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrExhausted = errors.New("all retries exhausted")

// StatusError is returned by sources for non-success upstream responses.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("status %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("status %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func (e *StatusError) StatusCode() int {
	return e.Code
}

// ExhaustedError reports that every attempt for an operation failed. It
// wraps the error from the final attempt.
type ExhaustedError struct {
	Context  string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %d attempts failed: %v", e.Context, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

type Class int

const (
	Transient Class = iota
	Fatal
)

func (c Class) String() string {
	if c == Fatal {
		return "fatal"
	}
	return "transient"
}

var fatalStatuses = map[int]bool{
	http.StatusBadRequest:   true,
	http.StatusUnauthorized: true,
	http.StatusForbidden:    true,
	http.StatusNotFound:     true,
}

// Classify decides whether another attempt could succeed. Client errors that
// will not change on repeat are fatal, everything else is transient.
func Classify(err error) Class {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) && fatalStatuses[coded.StatusCode()] {
		return Fatal
	}

	return Transient
}
