// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hberr defines the coded errors surfaced by hb.
package hberr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error for callers that need to branch on category.
type Kind int

const (
	KindConfig Kind = iota
	KindResourceMissing
	KindExternalProcess
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindResourceMissing:
		return "resource_missing"
	case KindExternalProcess:
		return "external_process"
	default:
		return "unknown"
	}
}

// Stable error codes. They are printed to users and must not be renumbered.
const (
	CodeNotInitialized   = "0000"
	CodeGnMissing        = "0001"
	CodeUnknownWorkflow  = "0002"
	CodeUnknownArgKind   = "0003"
	CodeSchemaIO         = "0004"
	CodeUnknownReference = "0005"
	CodeGnPhaseFailed    = "3000"
	CodeUnsupportedGnCmd = "3001"
)

// Error is the single error type returned across package boundaries.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code so sentinels like ErrNotInitialized work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// Config returns a configuration error.
func Config(code, format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a configuration error carrying cause.
func Wrap(code string, cause error, format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Missing returns a resource-missing error.
func Missing(code, format string, args ...any) *Error {
	return &Error{Kind: KindResourceMissing, Code: code, Message: fmt.Sprintf(format, args...)}
}

// External returns an external-process error wrapping cause.
func External(code string, cause error, format string, args ...any) *Error {
	return &Error{Kind: KindExternalProcess, Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Sentinels for errors.Is checks.
var (
	ErrNotInitialized  = &Error{Kind: KindConfig, Code: CodeNotInitialized}
	ErrGnMissing       = &Error{Kind: KindResourceMissing, Code: CodeGnMissing}
	ErrUnknownWorkflow = &Error{Kind: KindConfig, Code: CodeUnknownWorkflow}
	ErrUnknownArgKind  = &Error{Kind: KindConfig, Code: CodeUnknownArgKind}
	ErrSchemaIO        = &Error{Kind: KindConfig, Code: CodeSchemaIO}
	ErrUnknownRef      = &Error{Kind: KindConfig, Code: CodeUnknownReference}
	ErrGnPhaseFailed   = &Error{Kind: KindExternalProcess, Code: CodeGnPhaseFailed}
	ErrUnsupportedGn   = &Error{Kind: KindConfig, Code: CodeUnsupportedGnCmd}
)

// CodeOf returns the code carried by err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
