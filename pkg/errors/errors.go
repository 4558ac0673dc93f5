package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrDuplicate      = errors.New("resource already exists")
	ErrUnprocessable  = errors.New("unprocessable entity")
	ErrTooManyReqs    = errors.New("too many requests")
	ErrInternal       = errors.New("internal error")
	ErrSessionExpired = errors.New("session expired")
	ErrUnknown        = errors.New("unknown error")
)

// API error codes. The set is closed: every error surfaced by the request
// pipeline carries exactly one of these.
const (
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeRefreshTokenExpired = "REFRESH_TOKEN_EXPIRED"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeBadRequest          = "BAD_REQUEST"
	CodeInvalidQueryParam   = "INVALID_QUERY_PARAM"
	CodeForbidden           = "FORBIDDEN"
	CodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeDuplicateResource   = "DUPLICATE_RESOURCE"
	CodeStateConflict       = "STATE_CONFLICT"
	CodeUnprocessable       = "UNPROCESSABLE_ENTITY"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
	CodeDatabaseError       = "DATABASE_ERROR"
	CodeUnknownError        = "UNKNOWN_ERROR"
)

// AppError represents a structured application error with HTTP status mapping.
// Message is always resolved and safe to show to the user.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Details any    `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsSessionInvalidating reports whether the error code means the stored
// credentials are no longer usable and the user must authenticate again.
func (e *AppError) IsSessionInvalidating() bool {
	switch e.Code {
	case CodeUnauthorized, CodeTokenExpired, CodeRefreshTokenExpired, CodeInvalidRefreshToken:
		return true
	}
	return false
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    CodeResourceNotFound,
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error with the resolved user message.
func Unauthorized() *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: UserMessage(CodeUnauthorized, ""),
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeStateConflict,
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeInternalServerError,
		Message: UserMessage(CodeInternalServerError, ""),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTooManyReqs):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// sentinelFor maps an API error code to the sentinel carried in AppError.Err,
// so callers can use errors.Is against classified pipeline errors.
func sentinelFor(code string) error {
	switch code {
	case CodeUnauthorized:
		return ErrUnauthorized
	case CodeTokenExpired, CodeRefreshTokenExpired, CodeInvalidRefreshToken:
		return ErrSessionExpired
	case CodeValidationFailed, CodeBadRequest, CodeInvalidQueryParam:
		return ErrInvalidInput
	case CodeForbidden:
		return ErrForbidden
	case CodeResourceNotFound, CodeUserNotFound:
		return ErrNotFound
	case CodeDuplicateResource:
		return ErrDuplicate
	case CodeStateConflict:
		return ErrConflict
	case CodeUnprocessable:
		return ErrUnprocessable
	case CodeTooManyRequests:
		return ErrTooManyReqs
	case CodeInternalServerError, CodeDatabaseError:
		return ErrInternal
	default:
		return ErrUnknown
	}
}
