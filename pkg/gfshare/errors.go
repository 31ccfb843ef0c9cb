/*
 * paperback: resilient paper backups for the very paranoid
 * Copyright (C) 2018 Aleksa Sarai <cyphar@cyphar.com>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package gfshare

import "fmt"

// Code is the stable, machine-readable error classification carried by
// every Error this package returns.
type Code string

const (
	// InvalidParameter covers out-of-range or malformed caller input:
	// bad width, bad (N,T), bad padLength, bad secret hex, etc.
	InvalidParameter Code = "InvalidParameter"
	// InitError covers failures building the field tables for a width.
	InitError Code = "InitError"
	// InvalidRng covers an RNG provider failing its self-test.
	InvalidRng Code = "InvalidRng"
	// InvalidShare covers a malformed share string.
	InvalidShare Code = "InvalidShare"
	// MismatchedShares covers a Combine call given shares of differing
	// widths.
	MismatchedShares Code = "MismatchedShares"
	// RngFailure covers the RNG provider exhausting its bounded retry
	// budget, or erroring outright.
	RngFailure Code = "RngFailure"
)

// Error is the error type returned by every exported operation in this
// package. It carries a stable Code for programmatic dispatch, a
// human-readable Message, optional Context for diagnostics, and may wrap
// an underlying cause (for example an RNG read failure).
type Error struct {
	Code    Code
	Message string
	Context map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any, so errors.Is/errors.As see
// through to it. github.com/pkg/errors.Cause follows only Cause methods,
// which Error does not have, so it stops at the *Error itself.
func (e *Error) Unwrap() error {
	return e.cause
}

// newError constructs an *Error with the given code, optional cause, and
// a formatted message.
func newError(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

// withContext attaches diagnostic context key/value pairs to e, returning
// e for chaining at the call site.
func (e *Error) withContext(kv ...interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{}, len(kv)/2)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e.Context[key] = kv[i+1]
	}
	return e
}
