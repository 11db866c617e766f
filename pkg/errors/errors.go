// Package errors provides the unified error type and factory functions for the
// RiskNet risk assessment engine. Every layer of the application (domain,
// application, infrastructure, interfaces) uses AppError as the single carrier
// for structured error information, enabling consistent HTTP responses,
// logging, and monitoring.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		// Trim standard-library noise to keep traces readable.
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// AppError is the single structured error type used throughout RiskNet.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers of the application.
//
// Usage:
//
//	return errors.New(errors.ErrCodeSourceTimeout, "sanctions check timed out")
//	return errors.Wrap(graphErr, errors.ErrCodeGraphError, "failed to upsert entity")
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error, suitable
	// for inclusion in API responses returned to callers.
	Message string

	// Detail carries supplementary context (source name, entity names, query
	// parameters) that aids debugging without leaking internals to end users.
	Detail string

	// Cause is the underlying error that triggered this AppError, enabling
	// errors.Is / errors.As traversal of the full error chain.
	Cause error

	// Stack contains the formatted call-stack captured at the point of error
	// creation. It is not included in Error() output to keep API error
	// messages clean; logging middleware reads the field directly.
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>", detail omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set to the
// supplied string. It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
// Use this to attach a lower-level error to an already-constructed AppError
// without going through Wrap.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs a fresh AppError with the given code and message.
// A call-stack snapshot is captured automatically.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf constructs a fresh AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline:
//
//	return errors.Wrap(store.Find(ctx, id), errors.ErrCodeGraphError, "lookup failed")
//
// When err is already an *AppError and code is ErrCodeUnknown the original
// code is preserved, preventing loss of the original classification during
// cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == ErrCodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// IsCode reports whether any error in err's chain is an *AppError with the
// given code. It is the idiomatic way to check domain-specific failure modes:
//
//	if errors.IsCode(err, errors.ErrCodeSourceTimeout) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsDegradable reports whether err represents a per-source failure that the
// fan-out coordinator absorbs into a neutral result instead of failing the
// whole assessment. Only aggregation failures are fatal.
func IsDegradable(err error) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			switch ae.Code {
			case ErrCodeSourceUnavailable, ErrCodeSourceTimeout, ErrCodeSourceMalformed:
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError found in err's
// chain. If no *AppError is present, ErrCodeUnknown is returned.
//
// This is useful in middleware / logging layers that need a single code to
// emit as a metric label without coupling to specific domain errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeUnknown
}

// NewSourceUnavailable constructs a source-unavailable error for the named
// intelligence source.
func NewSourceUnavailable(source string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeSourceUnavailable,
		Message: fmt.Sprintf("source %s unavailable", source),
		Cause:   cause,
		Stack:   captureStack(1),
	}
}

// NewSourceTimeout constructs a source-timeout error for the named source.
func NewSourceTimeout(source string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeSourceTimeout,
		Message: fmt.Sprintf("source %s timed out", source),
		Cause:   cause,
		Stack:   captureStack(1),
	}
}

// NewSourceMalformed constructs a malformed-response error for the named source.
func NewSourceMalformed(source string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeSourceMalformed,
		Message: fmt.Sprintf("source %s returned a malformed response", source),
		Cause:   cause,
		Stack:   captureStack(1),
	}
}

// NewAggregationFailure constructs the one error class that fails an
// assessment outright.
func NewAggregationFailure(message string) *AppError {
	return &AppError{
		Code:    ErrCodeAggregationFailure,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidParam constructs an ErrCodeBadRequest AppError.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Stack:   captureStack(1),
	}
}

// NotFound constructs an ErrCodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs an ErrCodeInternal AppError for unexpected server-side
// failures where no more specific code applies.
func Internal(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}
