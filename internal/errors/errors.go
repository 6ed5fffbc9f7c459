// Package errors defines the structured error type used across the
// recommendation pipeline. Each error carries a Code so the API layer can map
// it to an HTTP status and envelope message without string matching.
package errors

import "fmt"

// Code classifies an error.
type Code string

const (
	// CodeDatasetUnavailable means the recipe dataset could not be read or parsed.
	CodeDatasetUnavailable Code = "DATASET_UNAVAILABLE"
	// CodeInsufficientData means the dataset is empty or has no usable rows.
	CodeInsufficientData Code = "INSUFFICIENT_DATA"
	// CodeInvalidQuery means the caller sent a malformed query.
	CodeInvalidQuery Code = "INVALID_QUERY"
	// CodeInternal is anything else.
	CodeInternal Code = "INTERNAL"
)

// Error is a coded error with an optional cause and diagnostic context.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code, so
// errors.Is(err, ErrInvalidQuery) works for any invalid-query error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrDatasetUnavailable = &Error{Code: CodeDatasetUnavailable, Message: "dataset unavailable"}
	ErrInsufficientData   = &Error{Code: CodeInsufficientData, Message: "insufficient data"}
	ErrInvalidQuery       = &Error{Code: CodeInvalidQuery, Message: "invalid query"}
)

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps cause with a code and message.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WrapWithContext wraps cause and attaches diagnostic key/values.
func WrapWithContext(code Code, message string, cause error, context map[string]any) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Context: context}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return CodeInternal
}
