package errors

import (
	"errors"
	"fmt"

	"agora/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes, mirroring the domain error taxonomy
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeDatabaseError     = "DATABASE_ERROR"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeEligibilityDenied = "ELIGIBILITY_DENIED"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeExpired           = "EXPIRED"
	CodeAlreadyProcessed  = "ALREADY_PROCESSED"
	CodeStateChanged      = "STATE_CHANGED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// FromDomain maps a domain error to a coded AppError. Every expected
// outcome in the taxonomy keeps its human-readable message; anything else
// is an internal failure with the cause attached for logging.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	code := CodeInternalError
	switch {
	case core.IsValidationError(err):
		code = CodeValidationError
	case core.IsEligibilityDenied(err):
		code = CodeEligibilityDenied
	case core.IsNotFoundError(err):
		code = CodeNotFound
	case core.IsConflict(err):
		code = CodeConflict
	case errors.Is(err, core.ErrChallengeExpired):
		code = CodeExpired
	case errors.Is(err, core.ErrAlreadyProcessed):
		code = CodeAlreadyProcessed
	case errors.Is(err, core.ErrStateChanged):
		code = CodeStateChanged
	case errors.Is(err, core.ErrInvalidTransition),
		errors.Is(err, core.ErrTiedOutcome),
		errors.Is(err, core.ErrWinnerContradictsTally):
		code = CodeEligibilityDenied
	}
	if code == CodeInternalError {
		return &AppError{Code: code, Message: "internal error", Cause: err}
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}
