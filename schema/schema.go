package schema

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/apikit/validation"
)

// Kind names the calling convention a Schema was registered with.
type Kind int

const (
	// KindParse returns the value or an error.
	KindParse Kind = iota + 1
	// KindValidate returns the value wrapped in Validated.
	KindValidate
	// KindValidateSync is KindValidate for libraries that distinguish a
	// synchronous variant.
	KindValidateSync
	// KindCast coerces the value into shape.
	KindCast
)

// String returns the convention name.
func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindValidate:
		return "validate"
	case KindValidateSync:
		return "validateSync"
	case KindCast:
		return "cast"
	default:
		return "unknown"
	}
}

// Validated is the result shape of validate-style conventions.
type Validated[T any] struct {
	Value T
}

// Schema converts untyped data into T using exactly one convention.
// A nil *Schema decodes without validation.
type Schema[T any] struct {
	kind Kind
	run  func(data any) (T, error)
}

// Parse registers a parse-style function.
func Parse[T any](fn func(data any) (T, error)) *Schema[T] {
	return &Schema[T]{kind: KindParse, run: fn}
}

// Validate registers a validate-style function.
func Validate[T any](fn func(data any) (Validated[T], error)) *Schema[T] {
	return &Schema[T]{kind: KindValidate, run: unwrap(fn)}
}

// ValidateSync registers a synchronous validate-style function.
func ValidateSync[T any](fn func(data any) (Validated[T], error)) *Schema[T] {
	return &Schema[T]{kind: KindValidateSync, run: unwrap(fn)}
}

// Cast registers a cast-style function.
func Cast[T any](fn func(data any) (T, error)) *Schema[T] {
	return &Schema[T]{kind: KindCast, run: fn}
}

func unwrap[T any](fn func(data any) (Validated[T], error)) func(any) (T, error) {
	return func(data any) (T, error) {
		v, err := fn(data)
		if err != nil {
			var zero T
			return zero, err
		}
		return v.Value, nil
	}
}

// Kind returns the registered convention.
func (s *Schema[T]) Kind() Kind {
	if s == nil {
		return 0
	}
	return s.kind
}

// Run converts data with the registered convention. Errors are returned
// unchanged.
func (s *Schema[T]) Run(data any) (T, error) {
	if s == nil || s.run == nil {
		return Decode[T](data)
	}
	return s.run(data)
}

// Identity returns a parse schema that only converts data into T.
func Identity[T any]() *Schema[T] {
	return Parse(Decode[T])
}

// Struct returns a parse schema that decodes data into T and checks its
// `validate` struct tags.
func Struct[T any]() *Schema[T] {
	return Parse(func(data any) (T, error) {
		v, err := Decode[T](data)
		if err != nil {
			return v, err
		}
		if err := validation.Validate(v); err != nil {
			var zero T
			return zero, err
		}
		return v, nil
	})
}

// Decode converts data into T: a type assertion when data already is a T,
// otherwise a JSON round trip. Nil data yields the zero value.
func Decode[T any](data any) (T, error) {
	if v, ok := data.(T); ok {
		return v, nil
	}
	var out T
	if data == nil {
		return out, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return out, fmt.Errorf("schema: encode %T: %w", data, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("schema: decode into %T: %w", out, err)
	}
	return out, nil
}
