// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

// ExitStatusCancelled is the conventional status for a run ended by
// the operator, as after SIGINT.
const ExitStatusCancelled = 130

// ExitError exits with Code. Err, when set, supplies the message;
// without it nothing is printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns Code.
func (e *ExitError) ExitCode() int { return e.Code }

// Cancelled wraps err, the reason the operator stopped the run, with
// ExitStatusCancelled.
func Cancelled(err error) *ExitError {
	return &ExitError{Code: ExitStatusCancelled, Err: err}
}
