package httpclient

import (
	"net/http"
	"time"
)

// Params holds query string parameters. Nil values are skipped; everything
// else is converted to its string form.
type Params map[string]any

// RequestOptions describes a single request.
type RequestOptions struct {
	// Method is the HTTP method. Defaults to GET.
	Method string `json:"method"`
	// Path is appended to BaseURL and BasePath. A leading slash is added
	// when missing.
	Path string `json:"path"`
	// Params becomes the query string, encoded in sorted key order.
	Params Params `json:"params,omitempty"`
	// Headers override the client defaults for this request.
	Headers map[string]string `json:"headers,omitempty"`
	// Body is JSON-encoded for methods other than GET and HEAD.
	Body any `json:"body,omitempty"`
	// Timeout overrides the client default when positive.
	Timeout time.Duration `json:"timeout,omitempty"`
	// ParseJSON disables JSON decoding of the response when set to false.
	ParseJSON *bool `json:"parse_json,omitempty"`
}

// method returns the effective HTTP method.
func (o RequestOptions) method() string {
	if o.Method == "" {
		return http.MethodGet
	}
	return o.Method
}

func (o RequestOptions) parseJSON() bool {
	return o.ParseJSON == nil || *o.ParseJSON
}

// Response is a received HTTP response. Any status code produces a Response.
type Response struct {
	// Data is the decoded JSON value, or the body text for non-JSON responses.
	Data any
	// Status is the HTTP status code.
	Status int
	// Headers are the response headers.
	Headers http.Header
	// OK reports a 2xx status.
	OK bool
	// Body is the raw response body.
	Body []byte
}
