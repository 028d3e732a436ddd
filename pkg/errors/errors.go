// Package errors provides structured error handling for statpull with
// error categorization, key-value context, and stack capture.
//
// Every failure in the fetch/write path is represented as a *Error with a
// Type drawn from the taxonomy below. Errors are never recovered
// internally; they surface to the CLI with the originating message.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// Type categorizes an error for handling and reporting.
type Type string

const (
	// TypeValidation indicates malformed caller input (e.g. mismatched
	// filter key/value lists, missing table name).
	TypeValidation Type = "validation"
	// TypeAPIRequest indicates a non-200 response from the stats API.
	TypeAPIRequest Type = "api_request"
	// TypeTransport indicates a network-level failure or timeout before
	// an HTTP status was received.
	TypeTransport Type = "transport"
	// TypeConnection indicates an unreachable or misconfigured destination.
	TypeConnection Type = "connection"
	// TypeContext indicates a destination-side context statement failed
	// (USE WAREHOUSE / DATABASE / SCHEMA).
	TypeContext Type = "context"
	// TypeWrite indicates the destination rejected the table.
	TypeWrite Type = "write"
	// TypeFilesystem indicates a local file could not be written.
	TypeFilesystem Type = "filesystem"
	// TypeConfig indicates invalid runtime configuration.
	TypeConfig Type = "config"
)

// Error is a structured error with a category, optional cause, key-value
// details, and the call stack captured at creation.
type Error struct {
	Type    Type
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is a single frame of the call stack at error creation.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key-value detail to the error. Chainable.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an error of the given type, capturing the call stack.
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates an error of the given type with a formatted message.
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error, preserving it as the cause. If err is
// already a *Error its original stack is kept. Returns nil for nil input.
func Wrap(err error, errType Type, message string) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existing.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType reports whether err is a *Error of the given type anywhere in
// its chain.
func IsType(err error, errType Type) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
