// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitCoder is implemented by errors that choose their exit status.
type ExitCoder interface {
	ExitCode() int
}

// ExitCode is the status for err: 0 for nil, the first ExitCoder in
// the chain, or 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Report writes "error: err" to w. Errors whose message is empty are
// not printed; they only carry a status.
func Report(w io.Writer, err error) {
	if err == nil || err.Error() == "" {
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// Fatal reports err on stderr and exits with ExitCode(err). Use it in
// main() for errors from run().
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(ExitCode(err))
}
