package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound             = errors.New("requested resource not found")
	ErrParentNotFound       = fmt.Errorf("parent comment not found in this post: %w", ErrNotFound)
	ErrUnauthorized         = errors.New("authentication required")
	ErrForbidden            = errors.New("forbidden access")
	ErrBadRequest           = errors.New("bad request")
	ErrConflict             = errors.New("resource conflict")
	ErrInternalServer       = errors.New("internal server error")
	ErrValidation           = errors.New("validation failed")
	ErrThrottled            = errors.New("please wait before requesting another code")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)

// Validationf wraps ErrValidation with a field level message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// IsUniqueViolation reports a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidOrExpiredCode),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}

	if IsUniqueViolation(err) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// ErrorCode is the stable machine readable name rendered next to the message.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrParentNotFound):
		return "ParentNotFound"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrUnauthorized):
		return "Unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrThrottled):
		return "Throttled"
	case errors.Is(err, ErrInvalidOrExpiredCode):
		return "InvalidOrExpiredCode"
	case errors.Is(err, ErrDuplicateEmail):
		return "DuplicateEmail"
	case errors.Is(err, ErrInvalidCredentials):
		return "InvalidCredentials"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		return "ValidationError"
	case errors.Is(err, ErrConflict), IsUniqueViolation(err):
		return "Conflict"
	}
	return "InternalError"
}
