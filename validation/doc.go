// Package validation checks values before they leave the process.
//
// Validate applies go-playground `validate` struct tags and backs
// schema.Struct, which endpoints use to reject bad input before a request
// is built and bad output after a response is decoded. Validator checks
// client and route configuration:
//
//	err := validation.New().
//	    URL("base_url", cfg.BaseURL).
//	    OneOf("method", method, validation.HTTPMethods).
//	    Err()
package validation
