package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"

	// Catalog configuration errors.
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Questionnaire / file input errors.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Order / payment state machine errors.
	ErrCodeForbiddenTransition   ErrorCode = "FORBIDDEN_TRANSITION"
	ErrCodeConflictingTransition ErrorCode = "CONFLICTING_TRANSITION"
	ErrCodeRevisionWindowExpired ErrorCode = "REVISION_WINDOW_EXPIRED"
	ErrCodeRevisionQuotaExceeded ErrorCode = "REVISION_QUOTA_EXCEEDED"
	ErrCodeAlreadyResolved       ErrorCode = "ALREADY_RESOLVED"

	// Compositor input errors.
	ErrCodeUnsupportedImageFormat ErrorCode = "UNSUPPORTED_IMAGE_FORMAT"
	ErrCodeImageTooLarge          ErrorCode = "IMAGE_TOO_LARGE"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeForbiddenTransition:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeConfigInvalid, ErrCodeValidationFailed,
		ErrCodeUnsupportedImageFormat:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeConflictingTransition, ErrCodeAlreadyResolved:
		return http.StatusConflict
	case ErrCodeRevisionWindowExpired, ErrCodeRevisionQuotaExceeded:
		return http.StatusUnprocessableEntity
	case ErrCodeImageTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the ErrorCode of err, or ErrCodeInternal for plain errors.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return Is(err, ErrCodeNotFound)
}

func IsConfigInvalid(err error) bool {
	return Is(err, ErrCodeConfigInvalid)
}

func IsValidationFailed(err error) bool {
	return Is(err, ErrCodeValidationFailed)
}

var (
	ErrOrderNotFound    = New(ErrCodeNotFound, "order not found")
	ErrPaymentNotFound  = New(ErrCodeNotFound, "payment not found")
	ErrCategoryNotFound = New(ErrCodeNotFound, "category not found")
	ErrUserNotFound     = New(ErrCodeNotFound, "user not found")
	ErrUnauthorized     = New(ErrCodeUnauthorized, "authorization required")
	ErrForbidden        = New(ErrCodeForbidden, "insufficient permissions")
)
