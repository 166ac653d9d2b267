package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Error kinds surfaced by the loyalty services. Store adapters translate
// driver errors into one of these before they leave the repository layer.
var (
	ErrNotFound     = new(ErrCodeNotFound, "resource not found")
	ErrInvalidState = new(ErrCodeInvalidState, "operation not permitted in current state")
	ErrExpired      = new(ErrCodeExpired, "resource has expired")
	ErrConflict     = new(ErrCodeConflict, "conflicting update")
	ErrValidation   = new(ErrCodeValidation, "validation error")
	ErrIntegrity    = new(ErrCodeIntegrity, "data integrity failure")
	ErrPermission   = new(ErrCodePermission, "permission denied")
	ErrDatabase     = new(ErrCodeDatabase, "database error")
	ErrSystem       = new(ErrCodeSystem, "system error")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:     http.StatusNotFound,
		ErrInvalidState: http.StatusUnprocessableEntity,
		ErrExpired:      http.StatusGone,
		ErrConflict:     http.StatusConflict,
		ErrValidation:   http.StatusBadRequest,
		ErrIntegrity:    http.StatusInternalServerError,
		ErrPermission:   http.StatusForbidden,
		ErrDatabase:     http.StatusInternalServerError,
		ErrSystem:       http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidState = "invalid_state"
	ErrCodeExpired      = "expired"
	ErrCodeConflict     = "conflict"
	ErrCodeValidation   = "validation_error"
	ErrCodeIntegrity    = "integrity_failure"
	ErrCodePermission   = "permission_denied"
	ErrCodeDatabase     = "database_error"
	ErrCodeSystem       = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidState checks if an error is an invalid state error
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsExpired checks if an error is an expired error
func IsExpired(err error) bool {
	return errors.Is(err, ErrExpired)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsIntegrity checks if an error is an integrity failure
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

// IsDatabase checks if an error is a database error
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// IsKnown reports whether err already carries one of the error kinds above.
func IsKnown(err error) bool {
	for e := range statusCodeMap {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
