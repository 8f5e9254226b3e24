package router

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/apikit/endpoint"
	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/util"
	"github.com/kbukum/apikit/validation"
)

// RoutesConfig is a declarative route tree, usually the `routes:` section of
// a config file. A map with a "path" key is a route; any other map is a
// group of routes.
//
//	routes:
//	  users:
//	    list: {path: /users}
//	    create: {path: /users, method: POST}
type RoutesConfig struct {
	Routes map[string]any `yaml:"routes" mapstructure:"routes"`
}

// Build creates an untyped Endpoint for every route in cfg, named after its
// dotted key path.
func Build(c *httpclient.Client, cfg RoutesConfig) (Node, error) {
	return build(c, cfg.Routes, nil)
}

func build(c *httpclient.Client, raw map[string]any, prefix []string) (Node, error) {
	node := make(Node, len(raw))
	for _, k := range util.SortedKeys(raw) {
		path := append(append(make([]string, 0, len(prefix)+1), prefix...), k)
		name := strings.Join(path, ".")

		m, ok := asMap(raw[k])
		if !ok {
			return nil, fmt.Errorf("router: %s must be a route or a group, got %T", name, raw[k])
		}
		if !isRoute(m) {
			child, err := build(c, m, path)
			if err != nil {
				return nil, err
			}
			node[k] = child
			continue
		}

		rc, err := decodeRoute(name, m)
		if err != nil {
			return nil, err
		}
		node[k] = endpoint.Route[any, any](c, rc).Name(name)
	}
	return node, nil
}

func decodeRoute(name string, m map[string]any) (endpoint.RouteConfig, error) {
	var rc endpoint.RouteConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      &rc,
	})
	if err != nil {
		return rc, err
	}
	if err := dec.Decode(m); err != nil {
		return rc, fmt.Errorf("router: %s: %w", name, err)
	}
	rc.Method = strings.ToUpper(rc.Method)

	err = validation.New().
		OneOf(name+".method", rc.Method, validation.HTTPMethods).
		NonNegative(name+".timeout", rc.Timeout).
		Headers(name+".headers", rc.Headers).
		Err()
	return rc, err
}

func isRoute(m map[string]any) bool {
	_, ok := m["path"].(string)
	return ok
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Node:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}
