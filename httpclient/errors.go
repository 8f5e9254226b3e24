package httpclient

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"

	"github.com/kbukum/apikit/errors"
)

// AbortedMessage is the message of every Error caused by an expired or
// cancelled request context.
const AbortedMessage = "the operation was aborted"

// Error carries the request context of a failed call.
type Error struct {
	// Message describes the failure.
	Message string
	// URL is the fully built request URL, or the best URL known at failure time.
	URL string
	// Options are the request options in effect.
	Options RequestOptions
	// Status is the HTTP status attached to the failure. Zero when the
	// failure did not come with one.
	Status int
	// Headers are the response headers when a response was received.
	Headers http.Header
	// Response is the received response, if any.
	Response *Response
	// Data is the decoded response payload, if any.
	Data any
	// Code classifies the failure in the shared error vocabulary.
	Code errors.ErrorCode
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// AppError converts e into the shared AppError vocabulary.
func (e *Error) AppError() *errors.AppError {
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	appErr := errors.New(e.Code, e.Message, status).WithCause(e.Cause).
		WithDetail("url", e.URL).
		WithDetail("method", e.Options.method())
	if e.Status > 0 {
		appErr.WithDetail("status", e.Status)
	}
	return appErr
}

// AsError finds an *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsAborted reports whether err was caused by an expired or cancelled
// request context.
func IsAborted(err error) bool {
	if e, ok := AsError(err); ok && e.Message == AbortedMessage {
		return true
	}
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

// NewTransportError wraps a failure that happened before a response was
// received. Context expiry and cancellation become an abort.
func NewTransportError(rawURL string, opts RequestOptions, cause error) *Error {
	aborted := stderrors.Is(cause, context.Canceled) || stderrors.Is(cause, context.DeadlineExceeded)
	var uerr *url.Error
	if stderrors.As(cause, &uerr) {
		cause = uerr.Err
	}
	msg := cause.Error()
	if aborted {
		msg = AbortedMessage
	}
	return &Error{
		Message: msg,
		URL:     rawURL,
		Options: opts,
		Code:    errors.ErrCodeConnectionFailed,
		Cause:   cause,
	}
}

// NewResponseError wraps a failure raised while handling a received
// response, such as a rejected payload. An *Error cause is returned as is.
func NewResponseError(rawURL string, opts RequestOptions, resp *Response, cause error) *Error {
	if e, ok := AsError(cause); ok {
		return e
	}
	e := &Error{
		Message:  cause.Error(),
		URL:      rawURL,
		Options:  opts,
		Response: resp,
		Code:     errors.ErrCodeInvalidResponse,
		Cause:    cause,
	}
	if resp != nil {
		e.Headers = resp.Headers
		e.Data = resp.Data
	}
	return e
}

func newRequestError(rawURL string, opts RequestOptions, cause error) *Error {
	return &Error{
		Message: cause.Error(),
		URL:     rawURL,
		Options: opts,
		Code:    errors.ErrCodeInvalidRequest,
		Cause:   cause,
	}
}
