// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for Rolekit.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Rolekit errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeAccessDenied indicates a resolved path escapes the sandbox root.
	CodeAccessDenied ErrorCode = "ACCESS_DENIED"

	// CodeInvalidImport indicates an import reference is empty, malformed,
	// or resolves outside the sandbox.
	CodeInvalidImport ErrorCode = "INVALID_IMPORT"

	// CodeMissingImport indicates a resolved, contained path does not exist.
	CodeMissingImport ErrorCode = "MISSING_IMPORT"

	// CodeParseError indicates a structured document could not be parsed.
	CodeParseError ErrorCode = "PARSE_ERROR"

	// CodeToolFailure indicates a tool execution failed.
	CodeToolFailure ErrorCode = "TOOL_FAILURE"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// Error is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type Error struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
	StatusCode  int // For HTTP responses
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *Error) MarshalJSON() ([]byte, error) {
	type Alias Error
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new Error with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *Error {
	return &Error{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		StatusCode: codeToStatusCode(code),
	}
}

// Newf creates a new Error with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *Error) WithRecoverable(recoverable bool) *Error {
	e.Recoverable = recoverable
	return e
}

// As attempts to convert an error to an *Error.
// Returns the error unchanged if it is one, or wraps it otherwise.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	if re, ok := err.(*Error); ok {
		return re
	}
	// Wrap unknown error as internal
	return New(CodeInternal, "wrapped error", err)
}

// HasCode reports whether err is an *Error carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	re, ok := err.(*Error)
	return ok && re.Code == code
}

// codeToStatusCode maps error codes to HTTP status codes.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeNotFound, CodeMissingImport:
		return 404
	case CodeInvalidInput, CodeInvalidImport, CodeParseError:
		return 400
	case CodeAccessDenied:
		return 403
	default:
		return 500
	}
}
