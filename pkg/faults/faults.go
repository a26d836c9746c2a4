// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package faults defines the error taxonomy shared by every pipeline stage.
//
// Each stage reports failures as a *Error carrying a Kind, so callers can
// decide on retries and exit codes without string matching:
//
//	var fe *faults.Error
//	if errors.As(err, &fe) && fe.Retryable() {
//	    // retry the write
//	}
package faults

import (
	"errors"
	"fmt"
)

// Kind categorizes a pipeline failure.
type Kind int

const (
	// KindUnknown indicates an unclassified error.
	KindUnknown Kind = iota

	// KindFetch indicates an unreachable or unreadable source.
	KindFetch

	// KindParse indicates malformed content that cannot be normalized.
	KindParse

	// KindSigning indicates a missing or invalid signing key.
	KindSigning

	// KindWrite indicates a filesystem failure in the sealed directory.
	KindWrite

	// KindConfig indicates invalid or incomplete configuration.
	KindConfig

	// KindVerify indicates a persisted proof failed verification.
	KindVerify

	// KindRejected indicates a verdict below threshold under the suppress policy.
	KindRejected
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "FetchError"
	case KindParse:
		return "ParseError"
	case KindSigning:
		return "SigningError"
	case KindWrite:
		return "WriteError"
	case KindConfig:
		return "ConfigError"
	case KindVerify:
		return "VerifyError"
	case KindRejected:
		return "VerdictRejected"
	default:
		return "UnknownError"
	}
}

// ExitCode maps a kind to the process exit code used by the CLI.
func (k Kind) ExitCode() int {
	switch k {
	case KindFetch:
		return 10
	case KindParse:
		return 11
	case KindSigning:
		return 12
	case KindWrite:
		return 13
	case KindConfig:
		return 14
	case KindVerify:
		return 15
	case KindRejected:
		return 16
	default:
		return 1
	}
}

// Error is a structured pipeline failure.
type Error struct {
	// Kind categorizes the error for programmatic handling.
	Kind Kind

	// Stage is the pipeline stage that failed (optional).
	Stage string

	// Path is the locator or file path involved (optional).
	Path string

	// Message is a human-readable description.
	Message string

	// Cause is the wrapped underlying error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path: %s)", msg, e.Path)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure may be transient. Only write
// failures are retried; signing failures indicate misconfiguration and
// fetch/parse failures need corrected input.
func (e *Error) Retryable() bool {
	return e.Kind == KindWrite
}

// ExitCode implements the CLI ExitCoder contract.
func (e *Error) ExitCode() int {
	return e.Kind.ExitCode()
}

// WithStage returns a copy of e attributed to stage.
func (e *Error) WithStage(stage string) *Error {
	c := *e
	c.Stage = stage
	return &c
}

// New creates an error of the given kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewWithPath creates an error of the given kind bound to a path.
func NewWithPath(kind Kind, path, message string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Message: message, Cause: cause}
}

// Fetch creates a FetchError.
func Fetch(path, message string, cause error) *Error {
	return NewWithPath(KindFetch, path, message, cause)
}

// Parse creates a ParseError.
func Parse(path, message string, cause error) *Error {
	return NewWithPath(KindParse, path, message, cause)
}

// Signing creates a SigningError.
func Signing(message string, cause error) *Error {
	return New(KindSigning, message, cause)
}

// Write creates a WriteError.
func Write(path, message string, cause error) *Error {
	return NewWithPath(KindWrite, path, message, cause)
}

// Config creates a ConfigError.
func Config(message string, cause error) *Error {
	return New(KindConfig, message, cause)
}

// Verify creates a VerifyError.
func Verify(path, message string, cause error) *Error {
	return NewWithPath(KindVerify, path, message, cause)
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	fe, ok := As(err)
	return ok && fe.Kind == kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	if fe, ok := As(err); ok {
		return fe.Kind
	}
	return KindUnknown
}
