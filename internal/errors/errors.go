package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies an application error.
type ErrorCode int

// System errors (1000-1999)
const (
	ErrInternal ErrorCode = 1000 + iota
	ErrDatabase
	ErrTimeout
)

// Authentication errors (2000-2999)
const (
	ErrUnauthorized ErrorCode = 2000 + iota
	ErrForbidden
	ErrInvalidToken
)

// Request errors (3000-3999)
const (
	ErrBadRequest ErrorCode = 3000 + iota
	ErrValidation
	ErrPrecondition
	ErrResourceNotFound
)

// Domain errors (4000-4999)
const (
	ErrPostNotFound ErrorCode = 4000 + iota
	ErrUpstreamUnavailable
	ErrCredential
)

// Kind is the stable, client-visible class of an error.
type Kind string

const (
	KindPrecondition        Kind = "precondition"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindRepository          Kind = "repository"
	KindCredential          Kind = "credential"
	KindInternal            Kind = "internal"
)

var errorKindMap = map[ErrorCode]Kind{
	ErrInternal: KindInternal,
	ErrDatabase: KindRepository,
	ErrTimeout:  KindUpstreamUnavailable,

	ErrUnauthorized: KindPrecondition,
	ErrForbidden:    KindPrecondition,
	ErrInvalidToken: KindPrecondition,

	ErrBadRequest:       KindPrecondition,
	ErrValidation:       KindPrecondition,
	ErrPrecondition:     KindPrecondition,
	ErrResourceNotFound: KindRepository,

	ErrPostNotFound:        KindRepository,
	ErrUpstreamUnavailable: KindUpstreamUnavailable,
	ErrCredential:          KindCredential,
}

// Kind maps the code onto the error taxonomy.
func (c ErrorCode) Kind() Kind {
	if k, ok := errorKindMap[c]; ok {
		return k
	}
	return KindInternal
}

// AppError is an error with a code and a human-readable message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// New creates an application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}
