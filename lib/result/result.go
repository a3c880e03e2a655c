// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package result

import "fmt"

// Code is a 32-bit result word as returned in word 1 of a service
// response or by a file-system call. Zero means success.
//
// Bit layout (most significant first):
//
//	31-27 level | 26-21 summary | 20-18 reserved | 17-10 module | 9-0 description
type Code uint32

// Success is the only non-failing code.
const Success Code = 0

// Failed reports whether the code is anything other than Success.
// The platform also defines non-negative informational codes, but
// every caller in this module treats any nonzero value as fatal.
func (c Code) Failed() bool { return c != Success }

// Level is the severity field (bits 27-31).
func (c Code) Level() uint32 { return uint32(c) >> 27 & 0x1F }

// Summary is the summary field (bits 21-26).
func (c Code) Summary() uint32 { return uint32(c) >> 21 & 0x3F }

// Module is the originating module field (bits 10-17).
func (c Code) Module() uint32 { return uint32(c) >> 10 & 0xFF }

// Description is the description field (bits 0-9).
func (c Code) Description() uint32 { return uint32(c) & 0x3FF }

// String renders the raw word followed by its decoded fields, e.g.
// "0xC8804478 (level=25 summary=4 module=17 description=120)".
func (c Code) String() string {
	return fmt.Sprintf("0x%08X (level=%d summary=%d module=%d description=%d)",
		uint32(c), c.Level(), c.Summary(), c.Module(), c.Description())
}

// MakeCode assembles a code from its fields. Out-of-range field values
// are masked to their bit width.
func MakeCode(level, summary, module, description uint32) Code {
	return Code(level&0x1F<<27 | summary&0x3F<<21 | module&0xFF<<10 | description&0x3FF)
}

// ServiceError reports a nonzero result from a platform call. It is
// always fatal: there is no retry anywhere in the tool, and the
// operator is expected to re-run it after a transient failure.
type ServiceError struct {
	// Operation names the failing call, e.g. "frd:a GetFriendKeyList"
	// or "FSUSER_OpenDirectory /letter".
	Operation string

	// Code is the result word returned by the service.
	Code Code

	// Err is the transport-level cause when the request never got a
	// result word (connection dropped, malformed reply). Nil when the
	// service answered with a failing Code.
	Err error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s failed: result %s", e.Operation, e.Code)
}

// Unwrap returns the transport-level cause, if any.
func (e *ServiceError) Unwrap() error { return e.Err }

// Check returns a *ServiceError when code is a failure, nil otherwise.
func Check(operation string, code Code) error {
	if code.Failed() {
		return &ServiceError{Operation: operation, Code: code}
	}
	return nil
}

// DecodeError reports that a record's bytes could not be parsed.
type DecodeError struct {
	// Subject identifies the record: a principal id for roster
	// entries, an archive path for letters.
	Subject string

	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Subject, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
