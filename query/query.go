package query

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/apikit/endpoint"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/router"
	"github.com/kbukum/apikit/util"
)

// Options are passed through to the cache layer untouched, for example
// stale times or retry counts.
type Options map[string]any

// QueryConfig configures a query descriptor.
type QueryConfig[In any] struct {
	// Input is sent as the request body.
	Input In
	// URLParams become the query string.
	URLParams endpoint.Params
	// QueryKey overrides the default key, the route's key path.
	QueryKey Key
	Options  Options
}

// QueryOptions is a query descriptor for a cache layer.
type QueryOptions[Out any] struct {
	QueryKey Key
	// QueryFn performs the call. A failed call returns an error carrying
	// only the original message.
	QueryFn func(ctx context.Context) (Out, error)
	Options Options
}

// MutationConfig configures a mutation descriptor.
type MutationConfig struct {
	URLParams endpoint.Params
	Options   Options
}

// MutationOptions is a mutation descriptor for a cache layer.
type MutationOptions[In, Out any] struct {
	// MutationFn performs the call with the variables given at call time.
	MutationFn func(ctx context.Context, variables In) (Out, error)
	Options    Options
}

func queryOptions[In, Out any](path []string, call endpoint.Func[In, Out], cfg QueryConfig[In]) QueryOptions[Out] {
	key := cfg.QueryKey
	if key == nil {
		key = getKey(path, nil)
	}
	input, params := cfg.Input, util.CloneMap(cfg.URLParams)
	return QueryOptions[Out]{
		QueryKey: key,
		QueryFn: func(ctx context.Context) (Out, error) {
			res, err := call(ctx, input, params)
			return unwrap(ctx, path, res, err)
		},
		Options: util.CloneMap(cfg.Options),
	}
}

func mutationOptions[In, Out any](path []string, call endpoint.Func[In, Out], cfg MutationConfig) MutationOptions[In, Out] {
	params := util.CloneMap(cfg.URLParams)
	return MutationOptions[In, Out]{
		MutationFn: func(ctx context.Context, variables In) (Out, error) {
			res, err := call(ctx, variables, params)
			return unwrap(ctx, path, res, err)
		},
		Options: util.CloneMap(cfg.Options),
	}
}

// unwrap turns a Result into the (data, error) pair cache layers expect.
// Input errors pass through; result errors become plain errors.
func unwrap[Out any](ctx context.Context, path []string, res *endpoint.Result[Out], err error) (Out, error) {
	var zero Out
	if err != nil {
		return zero, err
	}
	if res.Error != nil {
		logger.Get("query").WithContext(ctx).Debug("query failed", logger.Fields(
			logger.FieldEndpoint, keyString(path),
			logger.FieldStatus, res.Status,
			logger.FieldError, res.Error.Message,
		))
		return zero, stderrors.New(res.Error.Message)
	}
	return res.Data, nil
}

func keyString(path []string) string {
	return getKey(path, nil).String()
}

// Endpoint is an untyped route wrapped with its key path. The wrapped route
// is never modified.
type Endpoint struct {
	route router.Route
	path  []string
}

// Route returns the wrapped route.
func (e *Endpoint) Route() router.Route {
	return e.route
}

// Path returns the key path from the tree root.
func (e *Endpoint) Path() []string {
	return append([]string(nil), e.path...)
}

// GetKey returns the key path, plus the sorted params when non-empty.
func (e *Endpoint) GetKey(params endpoint.Params) Key {
	return getKey(e.path, params)
}

// QueryOptions returns a query descriptor.
func (e *Endpoint) QueryOptions(cfg QueryConfig[any]) QueryOptions[any] {
	return queryOptions(e.path, endpoint.Func[any, any](e.route.Invoke), cfg)
}

// MutationOptions returns a mutation descriptor.
func (e *Endpoint) MutationOptions(cfg MutationConfig) MutationOptions[any, any] {
	return mutationOptions(e.path, endpoint.Func[any, any](e.route.Invoke), cfg)
}

// Typed is the typed view of an enhanced endpoint.
type Typed[In, Out any] struct {
	path []string
	fn   endpoint.Func[In, Out]
}

// Func returns the bound endpoint function.
func (t *Typed[In, Out]) Func() endpoint.Func[In, Out] {
	return t.fn
}

// GetKey returns the key path, plus the sorted params when non-empty.
func (t *Typed[In, Out]) GetKey(params endpoint.Params) Key {
	return getKey(t.path, params)
}

// QueryOptions returns a query descriptor.
func (t *Typed[In, Out]) QueryOptions(cfg QueryConfig[In]) QueryOptions[Out] {
	return queryOptions(t.path, t.fn, cfg)
}

// MutationOptions returns a mutation descriptor.
func (t *Typed[In, Out]) MutationOptions(cfg MutationConfig) MutationOptions[In, Out] {
	return mutationOptions(t.path, t.fn, cfg)
}
