// Package logger is the structured logging layer of apikit, built on zerolog.
//
// Every package logs through Get(name), which returns a logger registered
// for that name or the global logger tagged with it. Lines written through
// WithContext carry the request ID and the active trace and span IDs.
//
//	logging:
//	  level: debug
//	  format: json
package logger
