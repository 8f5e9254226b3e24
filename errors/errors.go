package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the failure vocabulary shared by apikit packages.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"status"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// New builds an AppError. A zero status takes the code's default.
func New(code ErrorCode, message string, status int) *AppError {
	if status == 0 {
		status = code.Status()
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Retryable:  code.Retryable(),
	}
}

// Validation reports rejected input.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, 0)
}

// MissingField reports an empty required field.
func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, field+" is required", 0).WithDetail("field", field)
}

// AsAppError finds an *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err's chain holds an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Wrap returns the AppError in err's chain, or wraps err as INTERNAL_ERROR.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return New(ErrCodeInternal, err.Error(), 0).WithCause(err)
}
