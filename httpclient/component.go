package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/kbukum/apikit/component"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component owns a Client inside a component.Registry. The client is built
// on Start and released on Stop.
type Component struct {
	config Config
	opts   []Option

	mu     sync.RWMutex
	client *Client
}

// NewComponent returns a Component that builds its Client from cfg on Start.
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg.clone(), opts: opts}
}

// Name returns Config.Name, or the default client name.
func (c *Component) Name() string {
	if c.config.Name == "" {
		return defaultName
	}
	return c.config.Name
}

// Start builds the client. An invalid config fails the start.
func (c *Component) Start(context.Context) error {
	cl, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.client = cl
	c.mu.Unlock()
	return nil
}

// Stop closes idle connections and drops the client.
func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	cl := c.client
	c.client = nil
	c.mu.Unlock()
	if cl != nil {
		cl.Close()
	}
	return nil
}

// Health probes HealthPath when configured. Without one a started client
// counts as healthy.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	cl := c.Client()
	switch {
	case cl == nil:
		h.Status, h.Message = component.StatusUnhealthy, "not started"
	case c.config.HealthPath != "":
		resp, err := cl.Execute(ctx, RequestOptions{Path: c.config.HealthPath, ParseJSON: new(bool)})
		if err != nil {
			h.Status, h.Message = component.StatusUnhealthy, err.Error()
		} else if resp.Status >= http.StatusInternalServerError {
			h.Status, h.Message = component.StatusDegraded, fmt.Sprintf("%s returned %d", c.config.HealthPath, resp.Status)
		}
	}
	return h
}

// Describe summarises the base URL, timeout, auth and health path.
func (c *Component) Describe() component.Description {
	parts := []string{c.config.BaseURL + c.config.BasePath}
	if c.config.Timeout > 0 {
		parts = append(parts, "timeout="+c.config.Timeout.String())
	}
	if c.config.Auth != nil && c.config.Auth.Type != AuthNone {
		parts = append(parts, "auth="+string(c.config.Auth.Type))
	}
	if c.config.HealthPath != "" {
		parts = append(parts, "health="+c.config.HealthPath)
	}
	return component.Description{Type: "http-client", Details: strings.Join(parts, " ")}
}

// Client returns the running client, or nil outside Start and Stop.
func (c *Component) Client() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}
