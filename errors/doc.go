// Package errors is the failure vocabulary shared by apikit packages: a
// machine-readable code, a message, the HTTP status reported to callers and
// whether a retry may help.
package errors
