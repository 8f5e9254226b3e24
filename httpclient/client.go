package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/util"
	"github.com/kbukum/apikit/version"
)

const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	headerUserAgent     = "User-Agent"
	headerRequestID     = "X-Request-ID"
	contentTypeJSON     = "application/json"
)

// Client holds shared request defaults and performs HTTP calls.
// A Client is safe for concurrent use and is never mutated after New.
type Client struct {
	httpClient *http.Client
	config     Config
	log        *logger.Logger
	baseLog    *logger.Logger
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	logger    *logger.Logger
	transport http.RoundTripper
	metrics   *observability.Metrics
}

// WithLogger sets the logger used for request logs.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithMetrics records request metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg = cfg.clone()
	if o.transport != nil {
		cfg.Transport = o.transport
	}
	if o.metrics != nil {
		cfg.Metrics = o.metrics
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport, err := buildTransport(cfg)
	if err != nil {
		return nil, err
	}

	baseLog := o.logger
	if baseLog == nil {
		baseLog = logger.Get("httpclient")
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		config:     cfg,
		log:        baseLog.WithFields(logger.Fields("client", cfg.Name)),
		baseLog:    baseLog,
	}, nil
}

func buildTransport(cfg Config) (http.RoundTripper, error) {
	if cfg.Transport != nil {
		return cfg.Transport, nil
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}
	return transport, nil
}

// Derive returns a new Client built from a copy of this client's
// configuration after fn has modified it. c itself is not changed.
func (c *Client) Derive(fn func(*Config)) (*Client, error) {
	cfg := c.config.clone()
	if fn != nil {
		fn(&cfg)
	}
	return New(cfg, WithLogger(c.baseLog))
}

// Name returns the configured client name.
func (c *Client) Name() string {
	return c.config.Name
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return c.config.clone()
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

// Close releases idle connections held by the transport.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Execute performs one request. Every received response is returned,
// whatever its status code. A failure before a response arrives is returned
// as an *Error.
func (c *Client) Execute(ctx context.Context, opts RequestOptions) (*Response, error) {
	opts.Method = opts.method()
	rawURL := BuildURL(c.config.BaseURL, c.config.BasePath, opts.Path, opts.Params)

	timeout := c.config.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctx, span := observability.StartClientSpan(ctx, opts.Method, rawURL)
	start := time.Now()
	c.config.Metrics.Started(ctx)

	resp, err := c.do(ctx, rawURL, opts)

	status := 0
	if resp != nil {
		status = resp.Status
	}
	observability.EndClientSpan(span, status, err)
	c.record(ctx, status, err, time.Since(start))
	return resp, err
}

func (c *Client) do(ctx context.Context, rawURL string, opts RequestOptions) (*Response, error) {
	req, err := c.newRequest(ctx, rawURL, opts)
	if err != nil {
		return nil, newRequestError(rawURL, opts, err)
	}

	log := c.log.WithContext(ctx)
	log.Debug("http request", logger.Fields(
		logger.FieldMethod, opts.Method,
		logger.FieldURL, rawURL,
		"headers", c.maskHeaders(req.Header),
	))

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !stderrors.Is(err, ctxErr) {
			err = stderrors.Join(ctxErr, err)
		}
		tErr := NewTransportError(rawURL, opts, err)
		log.Warn("http request failed", logger.MergeWithDuration(logger.Fields(
			logger.FieldMethod, opts.Method,
			logger.FieldURL, rawURL,
			logger.FieldError, tErr.Message,
		), time.Since(start)))
		return nil, tErr
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = stderrors.Join(ctxErr, err)
		}
		return nil, NewTransportError(rawURL, opts, fmt.Errorf("read response body: %w", err))
	}

	resp := &Response{
		Status:  httpResp.StatusCode,
		Headers: httpResp.Header,
		OK:      httpResp.StatusCode >= 200 && httpResp.StatusCode < 300,
		Body:    body,
	}
	log.Debug("http response", logger.MergeWithDuration(logger.Fields(
		logger.FieldMethod, opts.Method,
		logger.FieldURL, rawURL,
		logger.FieldStatus, resp.Status,
	), time.Since(start)))

	data, err := decodeBody(httpResp.Header.Get(headerContentType), body, opts.parseJSON())
	if err != nil {
		return nil, NewResponseError(rawURL, opts, resp, err)
	}
	resp.Data = data
	return resp, nil
}

// newRequest builds the *http.Request: merged headers, then auth, then the
// User-Agent, request ID and trace headers.
func (c *Client) newRequest(ctx context.Context, rawURL string, opts RequestOptions) (*http.Request, error) {
	headers, err := c.mergeHeaders(ctx, opts.Headers)
	if err != nil {
		return nil, err
	}

	body, err := encodeBody(opts.Method, opts.Body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if err := c.config.Auth.apply(req); err != nil {
		return nil, err
	}
	if req.Header.Get(headerUserAgent) == "" {
		req.Header.Set(headerUserAgent, version.UserAgent())
	}
	if c.config.RequestID && req.Header.Get(headerRequestID) == "" {
		req.Header.Set(headerRequestID, requestID(ctx))
	}
	observability.InjectHeaders(ctx, req.Header)
	return req, nil
}

// mergeHeaders layers the JSON content type, the static defaults, the
// computed defaults and the request headers. Later layers win and keys are
// compared case-insensitively.
func (c *Client) mergeHeaders(ctx context.Context, request map[string]string) (map[string]string, error) {
	merged := map[string]string{headerContentType: contentTypeJSON}
	layer := func(h map[string]string) {
		for k, v := range h {
			merged[http.CanonicalHeaderKey(k)] = v
		}
	}

	layer(c.config.Headers)
	if c.config.HeadersFunc != nil {
		computed, err := c.config.HeadersFunc(ctx)
		if err != nil {
			return nil, fmt.Errorf("compute headers: %w", err)
		}
		layer(computed)
	}
	layer(request)
	return merged, nil
}

func (c *Client) maskHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	for _, name := range c.config.Auth.sensitiveHeaders() {
		if v, ok := out[name]; ok {
			out[name] = util.MaskSecret(v, 4)
		}
	}
	return out
}

func (c *Client) record(ctx context.Context, status int, err error, d time.Duration) {
	if c.config.Metrics == nil {
		return
	}
	r := observability.Request{Client: c.config.Name, Endpoint: "unknown", Status: status, Duration: d}
	if op := observability.OperationFromContext(ctx); op != nil {
		r.Endpoint = op.Endpoint
	}
	if err != nil {
		r.ErrorType = "transport"
		if IsAborted(err) {
			r.ErrorType = "aborted"
		} else if e, ok := AsError(err); ok {
			r.ErrorType = string(e.Code)
		}
	}
	c.config.Metrics.Finished(ctx, r)
}

func requestID(ctx context.Context) string {
	if id, ok := logger.RequestIDFromContext(ctx); ok {
		return id
	}
	return uuid.NewString()
}

// encodeBody JSON-encodes body unless it is nil or the method carries no
// body. Readers and byte slices are sent as they are.
func encodeBody(method string, body any) (io.Reader, error) {
	if util.IsNil(body) || method == http.MethodGet || method == http.MethodHead {
		return nil, nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, nil
	case []byte:
		return bytes.NewReader(v), nil
	case json.RawMessage:
		return bytes.NewReader(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}

// decodeBody returns the decoded JSON value when the content type is JSON
// and parsing is enabled, otherwise the body text.
func decodeBody(contentType string, body []byte, parseJSON bool) (any, error) {
	if !parseJSON || !strings.Contains(contentType, contentTypeJSON) {
		return string(body), nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode json response: %w", err)
	}
	return data, nil
}
