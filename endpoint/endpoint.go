package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/schema"
	"github.com/kbukum/apikit/util"
)

// Params holds query string parameters for one call.
type Params = httpclient.Params

// None is the input type of endpoints that send no body.
type None struct{}

// RouteConfig is the request configuration owned by one Endpoint.
type RouteConfig struct {
	// Path is appended to the client base URL and base path.
	Path string `yaml:"path" mapstructure:"path"`
	// Method defaults to GET when the request is sent.
	Method string `yaml:"method" mapstructure:"method"`
	// Headers override the client headers for this route.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// Timeout overrides the client timeout when positive.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Endpoint binds one request configuration to a client together with
// optional input and output schemas. Configure it with the builder methods
// before sharing it; Execute only reads its state.
type Endpoint[In, Out any] struct {
	client *httpclient.Client
	name   string
	config RouteConfig
	input  *schema.Schema[In]
	output *schema.Schema[Out]
}

// Route creates an Endpoint bound to c and applies the set fields of cfg.
func Route[In, Out any](c *httpclient.Client, cfg RouteConfig) *Endpoint[In, Out] {
	e := &Endpoint[In, Out]{client: c}
	if cfg.Path != "" {
		e.Path(cfg.Path)
	}
	if cfg.Method != "" {
		e.Method(cfg.Method)
	}
	if cfg.Headers != nil {
		e.Headers(cfg.Headers)
	}
	if cfg.Timeout != 0 {
		e.Timeout(cfg.Timeout)
	}
	return e
}

// Name sets the label used in logs, spans and metrics.
func (e *Endpoint[In, Out]) Name(name string) *Endpoint[In, Out] {
	e.name = name
	return e
}

// Path sets the request path.
func (e *Endpoint[In, Out]) Path(path string) *Endpoint[In, Out] {
	e.config.Path = path
	return e
}

// Method sets the HTTP method.
func (e *Endpoint[In, Out]) Method(method string) *Endpoint[In, Out] {
	e.config.Method = method
	return e
}

// Headers replaces the route headers.
func (e *Endpoint[In, Out]) Headers(headers map[string]string) *Endpoint[In, Out] {
	e.config.Headers = util.CloneMap(headers)
	return e
}

// Timeout sets the route timeout.
func (e *Endpoint[In, Out]) Timeout(d time.Duration) *Endpoint[In, Out] {
	e.config.Timeout = d
	return e
}

// Input sets the schema applied to the input before it is sent.
func (e *Endpoint[In, Out]) Input(s *schema.Schema[In]) *Endpoint[In, Out] {
	e.input = s
	return e
}

// Output sets the schema applied to the response data.
func (e *Endpoint[In, Out]) Output(s *schema.Schema[Out]) *Endpoint[In, Out] {
	e.output = s
	return e
}

// InputFrom sets the input schema from any supported validator convention.
func (e *Endpoint[In, Out]) InputFrom(v any) (*Endpoint[In, Out], error) {
	s, err := schema.From[In](v)
	if err != nil {
		return e, err
	}
	return e.Input(s), nil
}

// OutputFrom sets the output schema from any supported validator convention.
func (e *Endpoint[In, Out]) OutputFrom(v any) (*Endpoint[In, Out], error) {
	s, err := schema.From[Out](v)
	if err != nil {
		return e, err
	}
	return e.Output(s), nil
}

// Clone returns an independent copy that can be reconfigured without
// affecting e.
func (e *Endpoint[In, Out]) Clone() *Endpoint[In, Out] {
	cp := *e
	cp.config.Headers = util.CloneMap(e.config.Headers)
	return &cp
}

// Config returns a copy of the route configuration.
func (e *Endpoint[In, Out]) Config() RouteConfig {
	cfg := e.config
	cfg.Headers = util.CloneMap(e.config.Headers)
	return cfg
}

// Client returns the client the endpoint sends requests with.
func (e *Endpoint[In, Out]) Client() *httpclient.Client {
	return e.client
}

// Label returns the endpoint name, or "METHOD path" when unnamed.
func (e *Endpoint[In, Out]) Label() string {
	if e.name != "" {
		return e.name
	}
	method := e.config.Method
	if method == "" {
		method = http.MethodGet
	}
	return method + " " + e.config.Path
}

// Execute sends one request.
//
// A present input is run through the input schema first; a schema failure
// is returned as the error, unchanged, and nothing is sent. Every later
// failure (transport, abort, output schema) is reported in Result.Error and
// the error return stays nil.
func (e *Endpoint[In, Out]) Execute(ctx context.Context, input In, params Params) (*Result[Out], error) {
	var body any
	if present(input) {
		body = input
		if e.input != nil {
			v, err := e.input.Run(input)
			if err != nil {
				return nil, err
			}
			body = v
		}
	}

	ctx, op := observability.StartOperation(ctx, e.client.Name(), e.Label())
	opts := e.requestOptions(body, params)

	resp, err := e.client.Execute(ctx, opts)
	if err != nil {
		return e.fail(ctx, op, err, nil, opts), nil
	}

	data, err := e.output.Run(resp.Data)
	if err != nil {
		return e.fail(ctx, op, err, resp, opts), nil
	}

	op.End(resp.Status, nil)
	logger.Get("endpoint").WithContext(ctx).Debug("endpoint executed", logger.MergeWithDuration(logger.Fields(
		logger.FieldEndpoint, e.Label(),
		logger.FieldStatus, resp.Status,
	), op.Duration()))
	return &Result[Out]{Data: data, Status: resp.Status}, nil
}

// requestOptions snapshots the route configuration for one call.
func (e *Endpoint[In, Out]) requestOptions(body any, params Params) httpclient.RequestOptions {
	return httpclient.RequestOptions{
		Method:  e.config.Method,
		Path:    e.config.Path,
		Params:  params,
		Headers: util.CloneMap(e.config.Headers),
		Body:    body,
		Timeout: e.config.Timeout,
	}
}

func (e *Endpoint[In, Out]) fail(ctx context.Context, op *observability.Operation, err error, resp *httpclient.Response, opts httpclient.RequestOptions) *Result[Out] {
	hErr, ok := httpclient.AsError(err)
	if !ok || resp != nil {
		cfg := e.client.Config()
		rawURL := httpclient.BuildURL(cfg.BaseURL, cfg.BasePath, opts.Path, opts.Params)
		if resp != nil {
			hErr = httpclient.NewResponseError(rawURL, opts, resp, err)
			if e.output == nil {
				// Only the implicit decode into Out failed; the status is
				// still the one received.
				hErr.Status = resp.Status
			}
		} else {
			hErr = httpclient.NewTransportError(rawURL, opts, err)
		}
	}

	res := failure[Out](hErr)
	op.End(res.Status, hErr)
	logger.Get("endpoint").WithContext(ctx).Debug("endpoint failed", logger.MergeWithError(logger.Fields(
		logger.FieldEndpoint, e.Label(),
		logger.FieldStatus, res.Status,
	), hErr))
	return res
}

// present reports whether an input value should be sent. Nil pointers,
// maps, slices and interfaces and the None marker count as absent.
func present(v any) bool {
	if _, ok := v.(None); ok {
		return false
	}
	return !util.IsNil(v)
}
