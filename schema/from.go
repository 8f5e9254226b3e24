package schema

import "fmt"

// Parser is implemented by validators with a parse convention.
type Parser[T any] interface {
	Parse(data any) (T, error)
}

// Validator is implemented by validators returning a wrapped value.
type Validator[T any] interface {
	Validate(data any) (Validated[T], error)
}

// SyncValidator is implemented by validators with a synchronous variant.
type SyncValidator[T any] interface {
	ValidateSync(data any) (Validated[T], error)
}

// Caster is implemented by validators that coerce values.
type Caster[T any] interface {
	Cast(data any) (T, error)
}

// From builds a Schema from a value exposing any of the four conventions.
// When several are present the first of parse, validate, validateSync and
// cast wins. The choice is made here, once.
func From[T any](v any) (*Schema[T], error) {
	switch s := v.(type) {
	case *Schema[T]:
		return s, nil
	case Parser[T]:
		return Parse(s.Parse), nil
	case Validator[T]:
		return Validate(s.Validate), nil
	case SyncValidator[T]:
		return ValidateSync(s.ValidateSync), nil
	case Caster[T]:
		return Cast(s.Cast), nil
	}
	return nil, fmt.Errorf("schema: %T has none of Parse, Validate, ValidateSync or Cast for %s", v, typeName[T]())
}

func typeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", &zero)[1:]
}
