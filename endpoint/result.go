package endpoint

import (
	"context"
	"net/http"

	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/schema"
)

// Result is the uniform outcome of Execute. Exactly one of Data and Error
// is meaningful: Error is set when the call could not produce valid data.
type Result[T any] struct {
	Data   T
	Error  *httpclient.Error
	Status int
}

// OK reports whether the call produced data.
func (r *Result[T]) OK() bool {
	return r != nil && r.Error == nil
}

// failure builds the Result for a failed call. The status is the error's
// own status, or 500 when it has none.
func failure[T any](err *httpclient.Error) *Result[T] {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Result[T]{Error: err, Status: status}
}

// Func is an Endpoint's Execute bound as a plain function.
type Func[In, Out any] func(ctx context.Context, input In, params Params) (*Result[Out], error)

// Invoker is the untyped call path shared by endpoints and bound functions.
type Invoker interface {
	Invoke(ctx context.Context, input any, params Params) (*Result[any], error)
}

// Bind returns Execute as a Func.
func (e *Endpoint[In, Out]) Bind() Func[In, Out] {
	return e.Execute
}

// Callable returns the bound Func as an Invoker.
func (e *Endpoint[In, Out]) Callable() Invoker {
	return e.Bind()
}

// Invoke calls the endpoint with an untyped input. The input is converted
// into In first; a conversion failure is returned like an input schema
// failure.
func (e *Endpoint[In, Out]) Invoke(ctx context.Context, input any, params Params) (*Result[any], error) {
	return e.Bind().Invoke(ctx, input, params)
}

// Invoke converts input into In, calls f and widens the result.
func (f Func[In, Out]) Invoke(ctx context.Context, input any, params Params) (*Result[any], error) {
	var in In
	if input != nil {
		v, err := schema.Decode[In](input)
		if err != nil {
			return nil, err
		}
		in = v
	}
	res, err := f(ctx, in, params)
	if err != nil {
		return nil, err
	}
	out := &Result[any]{Error: res.Error, Status: res.Status}
	if res.Error == nil {
		out.Data = res.Data
	}
	return out, nil
}
