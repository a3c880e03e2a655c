// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so callers can tell bad
// input from a failing device or archive without parsing messages.
type ErrorCategory string

const (
	// CategoryValidation covers bad flags, arguments, and config.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound covers a missing archive dump or fixture file.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryInternal covers service failures, I/O errors, and
	// malformed data read from the device.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error. Use the constructors rather than
// building one directly.
type ToolError struct {
	Category ErrorCategory
	Err      error

	// Hint is an optional follow-up suggestion printed after the error.
	Hint string
}

func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n  hint: " + e.Hint
}

func (e *ToolError) Unwrap() error { return e.Err }

// ExitCode is 2 for validation errors, as flag parsing does, and 1
// otherwise.
func (e *ToolError) ExitCode() int {
	if e.Category == CategoryValidation {
		return 2
	}
	return 1
}

// WithHint attaches a suggestion and returns e.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
