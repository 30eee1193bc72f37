package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers and for the HTTP layer
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeStorage      Code = "STORAGE_ERROR"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code is surfaced over HTTP
type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	// Exposed reports whether the error's own message may be shown to clients
	Exposed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:   {HTTPStatus: http.StatusBadRequest, PublicMessage: "Invalid request data", Exposed: true},
	CodeUnauthorized: {HTTPStatus: http.StatusUnauthorized, PublicMessage: "Authentication required", Exposed: true},
	CodeForbidden:    {HTTPStatus: http.StatusForbidden, PublicMessage: "Access denied", Exposed: true},
	CodeNotFound:     {HTTPStatus: http.StatusNotFound, PublicMessage: "Resource not found", Exposed: true},
	CodeConflict:     {HTTPStatus: http.StatusConflict, PublicMessage: "Conflict detected", Exposed: true},
	CodeRateLimit:    {HTTPStatus: http.StatusTooManyRequests, PublicMessage: "Too many requests, please slow down", Exposed: true},
	CodeStorage:      {HTTPStatus: http.StatusInternalServerError, PublicMessage: "Something went wrong, please try again"},
	CodeInternal:     {HTTPStatus: http.StatusInternalServerError, PublicMessage: "Internal server error"},
	CodeDependency:   {HTTPStatus: http.StatusServiceUnavailable, PublicMessage: "Service temporarily unavailable"},
}

// MetadataFor returns the metadata for code, falling back to CodeInternal
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is the typed error returned across package boundaries
type Error struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func Validation(message string) *Error { return New(CodeValidation, message) }

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func Unauthorized(message string) *Error { return New(CodeUnauthorized, message) }

func Forbidden(message string) *Error { return New(CodeForbidden, message) }

func Conflict(message string) *Error { return New(CodeConflict, message) }

func Storage(err error, message string) *Error { return Wrap(CodeStorage, err, message) }

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches any *Error carrying the same code, so errors.Is(err, apperrors.NotFound(""))
// works regardless of message
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.code == t.code
}

// As extracts the first *Error in err's chain
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code of err, CodeInternal for untyped errors
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// HasCode reports whether err carries code anywhere in its chain
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps err onto a response status
func HTTPStatus(err error) int {
	return MetadataFor(CodeOf(err)).HTTPStatus
}

// PublicMessage returns the message safe to show to clients
func PublicMessage(err error) string {
	typed := As(err)
	if typed == nil {
		return MetadataFor(CodeInternal).PublicMessage
	}
	meta := MetadataFor(typed.Code())
	if meta.Exposed && typed.Message() != "" {
		return typed.Message()
	}
	return meta.PublicMessage
}
