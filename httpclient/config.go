package httpclient

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/security"
	"github.com/kbukum/apikit/util"
	"github.com/kbukum/apikit/validation"
)

const defaultName = "http"

// HeadersFunc computes default headers at request time, for example to read a
// token that rotates.
type HeadersFunc func(ctx context.Context) (map[string]string, error)

// Config configures the HTTP client.
type Config struct {
	// Name identifies the client in logs, spans and metrics. Defaults to "http".
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the scheme and host all request paths are appended to.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// BasePath is inserted between BaseURL and the request path, e.g. "/v1".
	BasePath string `yaml:"base_path" mapstructure:"base_path"`

	// Timeout is the default per-request timeout. Zero disables it.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// HeadersFunc is evaluated on every request after Headers.
	HeadersFunc HeadersFunc `yaml:"-" mapstructure:"-"`

	// Auth configures authentication applied after the header merge.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`

	// TLS configures TLS settings for the HTTP transport.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// RequestID adds a generated X-Request-ID header when none is set.
	RequestID bool `yaml:"request_id" mapstructure:"request_id"`

	// HealthPath is probed with GET by Component.Health when set. 5xx
	// answers report degraded, transport failures unhealthy.
	HealthPath string `yaml:"health_path" mapstructure:"health_path"`

	// Metrics records request counters and durations when set.
	Metrics *observability.Metrics `yaml:"-" mapstructure:"-"`

	// Transport replaces the default cloned transport. TLS is ignored when set.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.BasePath != "" {
		c.BasePath = strings.TrimRight(c.BasePath, "/")
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	v := validation.New().
		URL("base_url", c.BaseURL).
		PathPrefix("base_path", c.BasePath).
		PathPrefix("health_path", c.HealthPath).
		NonNegative("timeout", c.Timeout).
		Headers("headers", c.Headers)

	c.Auth.validate(v)
	if err := c.TLS.Validate(); err != nil {
		v.AddError("tls", err.Error())
	}
	return v.Err()
}

// clone returns a copy whose maps and pointers can be changed without
// affecting c.
func (c Config) clone() Config {
	out := c
	out.Headers = util.CloneMap(c.Headers)
	if c.Auth != nil {
		auth := *c.Auth
		auth.Audience = slices.Clone(c.Auth.Audience)
		out.Auth = &auth
	}
	if c.TLS != nil {
		tlsCfg := *c.TLS
		out.TLS = &tlsCfg
	}
	return out
}
