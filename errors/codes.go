package errors

import "net/http"

// ErrorCode is a machine-readable failure class.
type ErrorCode string

const (
	// ErrCodeConnectionFailed: no response was received. Covers refused
	// connections, DNS failures, resets and aborted calls.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeInvalidInput: input was rejected before sending.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField: a required input field is empty.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidRequest: the request could not be built.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeInvalidResponse: the response could not be decoded or was
	// rejected by an output schema.
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// Retryable reports whether repeating the call may succeed.
func (c ErrorCode) Retryable() bool {
	return c == ErrCodeConnectionFailed
}

// Status is the HTTP status reported for the code when none was received.
func (c ErrorCode) Status() int {
	switch c {
	case ErrCodeInvalidInput, ErrCodeMissingField:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
