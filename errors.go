package supertest

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage marks a programming error in how the library was called, such as
	// passing the wrong number of arguments to Set or Assert.
	ErrUsage = errors.New("invalid usage")
	// ErrListen is returned by Send when the application under test could not start listening.
	ErrListen = errors.New("application failed to listen")
	// ErrDispatch is returned by Send when the request/response exchange failed at the transport level.
	ErrDispatch = errors.New("request dispatch failed")
	// ErrDecode matches a *DecodeError.
	ErrDecode = errors.New("response body decode failed")
)

// AssertionError reports an expectation that did not hold for a response.
// Message is the single line shown to the test author, e.g. "expected 404, got 200".
// Diff is optional detail for bodies that differ.
type AssertionError struct {
	Message string
	Diff    string
}

func (e *AssertionError) Error() string {
	return e.Message
}

func failf(format string, args ...any) *AssertionError {
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// DecodeError is returned when a response declares a JSON content type but its body
// does not parse. Error returns the parser's message unchanged.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports ErrDecode as a match so callers can test the category with errors.Is.
func (*DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}
