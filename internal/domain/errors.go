// Package domain defines the shared result type, the rewriter contract, and
// the error types used across the rewriting pipelines.
package domain

import "fmt"

// ParseError indicates the statement could not be parsed into a tree.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// UnsupportedError indicates a syntactic shape the rewriter refuses to touch.
type UnsupportedError struct {
	Message string
}

func (e *UnsupportedError) Error() string { return e.Message }

// ValidationError indicates invalid input or configuration.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrParse creates a ParseError with a formatted message.
func ErrParse(format string, args ...interface{}) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnsupported creates an UnsupportedError with a formatted message.
func ErrUnsupported(format string, args ...interface{}) *UnsupportedError {
	return &UnsupportedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
