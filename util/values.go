package util

import "reflect"

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// IsNil reports whether v is nil or holds a nil pointer, map, slice,
// interface, channel or func. Query params and request bodies treat such
// values as absent.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// MaskSecret keeps the first visible runes of s and replaces the rest with
// "***". Values no longer than visible are masked entirely.
func MaskSecret(s string, visible int) string {
	r := []rune(s)
	if len(r) <= visible {
		return "***"
	}
	return string(r[:visible]) + "***"
}
