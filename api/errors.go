// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-rtskb.
//
// Two classes exist. Resource errors (exhaustion, outstanding buffers, limits)
// are returned as values and the caller decides what to do. Contract
// violations (cursor overflow/underflow, fragment accounting) are never
// returned: they panic with an error wrapping one of the contract sentinels
// below.

package api

import (
	"errors"
	"fmt"
)

// Recoverable resource errors.
var (
	ErrPoolExhausted      = errors.New("buffer pool exhausted")
	ErrOutstandingBuffers = errors.New("buffer pool has outstanding buffers")
	ErrPoolsOutstanding   = errors.New("subsystem has live pools")
	ErrPoolLimit          = errors.New("maximum number of pools reached")
	ErrPoolReleased       = errors.New("buffer pool is released")
	ErrSubsystemStopped   = errors.New("subsystem is stopped")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNoHeadroom         = errors.New("insufficient headroom")
	ErrNoTailroom         = errors.New("insufficient tailroom")
	ErrResizerClosed      = errors.New("resizer is closed")
	ErrNotSupported       = errors.New("operation not supported")
)

// Contract violations. These only ever travel inside a panic.
var (
	ErrBufferOverflow     = errors.New("buffer overflow")
	ErrBufferUnderflow    = errors.New("buffer underflow")
	ErrFragmentAccounting = errors.New("fragment accounting corrupted")
	ErrNonlinear          = errors.New("operation requires a linear buffer")
	ErrOwnership          = errors.New("buffer ownership violated")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeLeak
	ErrCodeLimit
	ErrCodeNotSupported
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid-argument"
	case ErrCodeResourceExhausted:
		return "resource-exhausted"
	case ErrCodeLeak:
		return "leak"
	case ErrCodeLimit:
		return "limit"
	case ErrCodeNotSupported:
		return "not-supported"
	default:
		return "internal"
	}
}

// Error represents a structured error with code and context.
// Cause, when set, is reachable through errors.Is / errors.As.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the cause for errors.Is.
func (e *Error) Unwrap() error { return e.Cause }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause attaches the underlying sentinel or error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// CodeOf extracts the code of the first *Error in err's chain.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
