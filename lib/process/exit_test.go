// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

type statusError struct{ code int }

func (e statusError) Error() string { return fmt.Sprintf("status %d", e.code) }
func (e statusError) ExitCode() int { return e.code }

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"coder", statusError{130}, 130},
		{"wrapped coder", fmt.Errorf("session: %w", statusError{2}), 2},
	}
	for _, test := range tests {
		if got := ExitCode(test.err); got != test.want {
			t.Errorf("%s: ExitCode = %d, want %d", test.name, got, test.want)
		}
	}
}

func TestReport(t *testing.T) {
	var buffer bytes.Buffer
	Report(&buffer, errors.New("no roster"))
	if got := buffer.String(); got != "error: no roster\n" {
		t.Errorf("Report wrote %q", got)
	}

	buffer.Reset()
	Report(&buffer, nil)
	Report(&buffer, errors.New(""))
	if buffer.Len() != 0 {
		t.Errorf("Report wrote %q for a nil or silent error", buffer.String())
	}
}
