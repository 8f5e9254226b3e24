package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/apikit/errors"
)

var structs = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
})

// Validate checks a struct, or pointer to struct, against its `validate`
// tags. Failures come back as an INVALID_INPUT AppError; Fields lists them.
// Other values pass unchecked.
func Validate(s any) error {
	if !isStruct(s) {
		return nil
	}
	return convert(structs().Struct(s), "")
}

// Var checks one value against a tag expression such as "required,url".
func Var(field string, value any, tag string) error {
	return convert(structs().Var(value, tag), field)
}

// Fields returns the failures carried by an error from this package.
func Fields(err error) []FieldError {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return nil
	}
	fields, _ := appErr.Details["fields"].([]FieldError)
	return fields
}

func convert(err error, field string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Validation("validation failed").WithCause(err)
	}
	fields := make([]FieldError, len(verrs))
	for i, e := range verrs {
		name := field
		if name == "" {
			name = path(e)
		}
		fields[i] = FieldError{Field: name, Message: message(e)}
	}
	return failed(fields)
}

// path drops the root struct name, so nested fields read "address.city".
func path(e validator.FieldError) string {
	if _, rest, ok := strings.Cut(e.Namespace(), "."); ok {
		return rest
	}
	return e.Field()
}

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"url":      "must be a valid URL",
	"http_url": "must be a valid URL",
	"uuid":     "must be a valid UUID",
	"uuid4":    "must be a valid UUID",
	"oneof":    "must be one of: %s",
	"gt":       "must be greater than %s",
	"gte":      "must be greater than or equal to %s",
	"lt":       "must be less than %s",
	"lte":      "must be less than or equal to %s",
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "min", "max", "len":
		bound := map[string]string{"min": "at least", "max": "at most", "len": "exactly"}[e.Tag()]
		if e.Kind() == reflect.String || e.Kind() == reflect.Slice || e.Kind() == reflect.Map {
			return "must be " + bound + " " + e.Param() + " long"
		}
		return "must be " + bound + " " + e.Param()
	}
	tmpl, ok := messages[e.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(tmpl, "%s") {
		return strings.Replace(tmpl, "%s", e.Param(), 1)
	}
	return tmpl
}

func isStruct(s any) bool {
	v := reflect.ValueOf(s)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	return v.Kind() == reflect.Struct
}
