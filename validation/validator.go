package validation

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/util"
)

// HTTPMethods lists the request methods accepted in route definitions.
var HTTPMethods = []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator collects rule failures for configuration values. Every rule
// returns the receiver so checks chain:
//
//	err := validation.New().
//	    URL("base_url", cfg.BaseURL).
//	    NonNegative("timeout", cfg.Timeout).
//	    Err()
type Validator struct {
	failures []FieldError
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure.
func (v *Validator) AddError(field, message string) *Validator {
	v.failures = append(v.failures, FieldError{Field: field, Message: message})
	return v
}

// Errors returns the failures recorded so far.
func (v *Validator) Errors() []FieldError {
	return slices.Clone(v.failures)
}

// Err returns nil when every rule passed, otherwise an INVALID_INPUT
// AppError listing the failures in its "fields" detail.
func (v *Validator) Err() error {
	if len(v.failures) == 0 {
		return nil
	}
	return failed(v.failures)
}

func failed(fields []FieldError) *errors.AppError {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", fields)
}

// Required rejects empty or blank values.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// URL accepts empty values and absolute http or https URLs.
func (v *Validator) URL(field, value string) *Validator {
	if value == "" {
		return v
	}
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		v.AddError(field, "must be an absolute http(s) URL")
	}
	if err == nil && (u.RawQuery != "" || u.Fragment != "") {
		v.AddError(field, "must not carry a query or fragment")
	}
	return v
}

// PathPrefix accepts empty values and paths starting with a slash.
func (v *Validator) PathPrefix(field, value string) *Validator {
	if value != "" && !strings.HasPrefix(value, "/") {
		v.AddError(field, "must start with /")
	}
	return v
}

// NonNegative rejects negative durations.
func (v *Validator) NonNegative(field string, d time.Duration) *Validator {
	if d < 0 {
		v.AddError(field, "must not be negative")
	}
	return v
}

// OneOf accepts empty values and case-insensitive matches of allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	if !slices.ContainsFunc(allowed, func(a string) bool { return strings.EqualFold(a, value) }) {
		v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	}
	return v
}

// Headers checks that every name is a valid HTTP field name and every value
// is sendable.
func (v *Validator) Headers(field string, headers map[string]string) *Validator {
	for _, name := range util.SortedKeys(headers) {
		switch {
		case !httpguts.ValidHeaderFieldName(name):
			v.AddError(fmt.Sprintf("%s.%s", field, name), "is not a valid header name")
		case !httpguts.ValidHeaderFieldValue(headers[name]):
			v.AddError(fmt.Sprintf("%s.%s", field, name), "has an invalid value")
		}
	}
	return v
}

// Custom records message when ok is false.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}
