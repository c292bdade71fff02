// Copyright The ODL Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package errors defines the single error kind raised at the compiler's
// public boundary, along with the stage discriminant attached to every
// failure.
package errors

import "fmt"

// Stage identifies which of the six compilation stages (or the facade
// itself) raised a given error.
type Stage uint8

const (
	// InputGuard is raised by the facade before any stage runs.
	InputGuard Stage = iota
	// Parser is stage 1.
	Parser
	// SyntaxRule is stage 2.
	SyntaxRule
	// Expander is stage 3.
	Expander
	// Resolver is stage 4.
	Resolver
	// WiringRule is stage 5.
	WiringRule
	// Assembler is stage 6.
	Assembler
	// Unknown wraps an unexpected internal failure not native to any stage.
	Unknown
)

// String returns the stage's label, as reported on OdlCompilationError.
func (s Stage) String() string {
	switch s {
	case InputGuard:
		return "InputGuard"
	case Parser:
		return "Parser"
	case SyntaxRule:
		return "SyntaxRule"
	case Expander:
		return "Expander"
	case Resolver:
		return "Resolver"
	case WiringRule:
		return "WiringRule"
	case Assembler:
		return "Assembler"
	default:
		return "Unknown"
	}
}

// OdlCompilationError is the single error type raised across the compiler's
// public boundary.  It carries the stage that detected the problem, a
// human-readable message, and (for stages wrapping an unexpected failure)
// the original cause.
type OdlCompilationError struct {
	stage   Stage
	message string
	cause   error
}

// New constructs a stage-labelled compilation error.
func New(stage Stage, message string) *OdlCompilationError {
	return &OdlCompilationError{stage: stage, message: message}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(stage Stage, format string, args ...any) *OdlCompilationError {
	return New(stage, fmt.Sprintf(format, args...))
}

// Wrap preserves an unexpected, non-domain error as the cause of a
// stage-labelled compilation error.  Used by the facade to ensure no raw
// panics or internal errors ever leak past the public API.
func Wrap(stage Stage, cause error) *OdlCompilationError {
	return &OdlCompilationError{stage: stage, message: cause.Error(), cause: cause}
}

// Stage returns the stage which raised this error.
func (e *OdlCompilationError) Stage() Stage {
	return e.stage
}

// Message returns the human-readable description of the failure.
func (e *OdlCompilationError) Message() string {
	return e.message
}

// Error implements the error interface.
func (e *OdlCompilationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.stage, e.message)
}

// Unwrap exposes the original cause, if any, so callers can use
// errors.Is/errors.As through a wrapped internal error.
func (e *OdlCompilationError) Unwrap() error {
	return e.cause
}
