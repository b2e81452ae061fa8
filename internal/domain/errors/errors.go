package errors

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies a failure by how the caller is expected to react to it.
type Kind string

const (
	// KindNetwork means no response arrived from the backend.
	KindNetwork Kind = "network"
	// KindValidation carries field-level messages for the originating form.
	KindValidation Kind = "validation"
	// KindUnauthorized means the session is no longer valid.
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	// KindRejected is a business-rule refusal with a general message, e.g. an invalid coupon.
	KindRejected Kind = "rejected"
	KindConflict Kind = "conflict"
	KindServer   Kind = "server"
	// KindPending means an identical exclusive mutation is still in flight.
	KindPending Kind = "pending"
)

// Retryable reports whether a read failing with this kind may be retried.
func (k Kind) Retryable() bool {
	return k == KindNetwork || k == KindServer
}

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
	Kind() Kind
	Fields() []FieldError
}

// FieldError is a validation message bound to one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	kind      Kind
	httpCode  int
	errorCode string
	message   string
	details   string
	fields    []FieldError
	cause     error
}

// NewBaseError creates a new base error
func NewBaseError(kind Kind, httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		kind:      kind,
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}

	return e.message
}

// Unwrap exposes the transport or decoding failure behind the error, if any.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// Is matches errors sharing the same business code, so copies produced by
// WithDetails or WithMessage still match the predefined value.
func (e *BaseError) Is(target error) bool {
	var other *BaseError
	if !errors.As(target, &other) {
		return false
	}

	return other.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

func (e *BaseError) Kind() Kind {
	return e.kind
}

func (e *BaseError) Fields() []FieldError {
	return e.fields
}

func (e *BaseError) clone() *BaseError {
	c := *e
	if e.fields != nil {
		c.fields = append([]FieldError(nil), e.fields...)
	}

	return &c
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	c := e.clone()
	c.details = details

	return c
}

// WithMessage replaces the user-facing message, typically with the backend's own text.
func (e *BaseError) WithMessage(message string) *BaseError {
	if message == "" {
		return e
	}
	c := e.clone()
	c.message = message

	return c
}

func (e *BaseError) WithFields(fields ...FieldError) *BaseError {
	c := e.clone()
	c.fields = append(c.fields, fields...)

	return c
}

// WithCause records the underlying failure.
func (e *BaseError) WithCause(cause error) *BaseError {
	c := e.clone()
	c.cause = cause

	return c
}

// Predefined error types
var (
	ErrNetworkUnreachable = NewBaseError(
		KindNetwork,
		http.StatusBadGateway,
		"NETWORK_UNREACHABLE",
		"network unreachable",
		"",
	)

	ErrValidationFailed = NewBaseError(
		KindValidation,
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	ErrUnauthorized = NewBaseError(
		KindUnauthorized,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"authentication required",
		"",
	)

	// ErrSessionExpired is reported once a 401 has cleared the session.
	ErrSessionExpired = NewBaseError(
		KindUnauthorized,
		http.StatusUnauthorized,
		"SESSION_EXPIRED",
		"session expired, please sign in again",
		"",
	)

	ErrNotAuthenticated = NewBaseError(
		KindUnauthorized,
		http.StatusUnauthorized,
		"NOT_AUTHENTICATED",
		"sign in to continue",
		"",
	)

	ErrForbidden = NewBaseError(
		KindForbidden,
		http.StatusForbidden,
		"FORBIDDEN",
		"access denied",
		"",
	)

	ErrNotFound = NewBaseError(
		KindNotFound,
		http.StatusNotFound,
		"NOT_FOUND",
		"resource not found",
		"",
	)

	ErrRejected = NewBaseError(
		KindRejected,
		http.StatusBadRequest,
		"REQUEST_REJECTED",
		"request rejected",
		"",
	)

	ErrCouponRejected = NewBaseError(
		KindRejected,
		http.StatusBadRequest,
		"COUPON_REJECTED",
		"coupon cannot be applied",
		"",
	)

	ErrConflict = NewBaseError(
		KindConflict,
		http.StatusConflict,
		"CONFLICT",
		"resource conflict",
		"",
	)

	ErrServer = NewBaseError(
		KindServer,
		http.StatusBadGateway,
		"UPSTREAM_ERROR",
		"backend error",
		"",
	)

	ErrMalformedResponse = NewBaseError(
		KindServer,
		http.StatusBadGateway,
		"MALFORMED_RESPONSE",
		"unexpected backend response",
		"",
	)

	ErrMutationPending = NewBaseError(
		KindPending,
		http.StatusConflict,
		"MUTATION_PENDING",
		"request already in progress",
		"",
	)

	ErrInternalError = NewBaseError(
		KindServer,
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal error",
		"",
	)
)

// FromStatus converts a backend error response into a classified error.
// 4xx responses carrying field errors become validation failures; other 4xx
// responses without a more specific class are business rejections.
func FromStatus(status int, message string, fields []FieldError) *BaseError {
	var base *BaseError
	switch {
	case status == http.StatusUnauthorized:
		base = ErrUnauthorized
	case status == http.StatusForbidden:
		base = ErrForbidden
	case status == http.StatusNotFound:
		base = ErrNotFound
	case status >= 400 && status < 500 && len(fields) > 0:
		base = ErrValidationFailed.WithFields(fields...)
	case status == http.StatusConflict:
		base = ErrConflict
	case status >= 400 && status < 500:
		base = ErrRejected
	default:
		base = ErrServer
	}

	c := base.clone()
	if message != "" {
		c.message = message
	}
	c.httpCode = upstreamCode(status, base.httpCode)

	return c
}

func upstreamCode(status, fallback int) int {
	if status >= 400 && status < 500 {
		return status
	}

	return fallback
}

// KindOf classifies any error. Context cancellation and unknown errors count
// as network and server failures respectively.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}

	return KindServer
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// AsAppError returns the AppError in err's chain, falling back to ErrInternalError.
func AsAppError(err error) AppError {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalError.WithCause(err)
}
