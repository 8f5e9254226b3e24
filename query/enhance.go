package query

import (
	"github.com/kbukum/apikit/endpoint"
	"github.com/kbukum/apikit/router"
)

// Node mirrors a router.Node with every route wrapped in an *Endpoint.
type Node map[string]any

// Enhance builds a new tree over node. The original node and its routes are
// left as they are.
func Enhance(node router.Node) Node {
	return enhance(node, nil)
}

func enhance(node router.Node, prefix []string) Node {
	out := make(Node, len(node))
	for k, v := range node {
		path := append(append(make([]string, 0, len(prefix)+1), prefix...), k)
		switch val := v.(type) {
		case router.Route:
			out[k] = &Endpoint{route: val, path: path}
		case router.Node:
			out[k] = enhance(val, path)
		case map[string]any:
			out[k] = enhance(router.Node(val), path)
		default:
			out[k] = v
		}
	}
	return out
}

// Find returns the enhanced endpoint at path.
func Find(node Node, path ...string) (*Endpoint, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var cur any = node
	for _, key := range path {
		sub, ok := cur.(Node)
		if !ok {
			return nil, false
		}
		if cur, ok = sub[key]; !ok {
			return nil, false
		}
	}
	e, ok := cur.(*Endpoint)
	return e, ok
}

// Lookup returns the typed view of the endpoint at path. It reports false
// when the route is not an *endpoint.Endpoint[In, Out].
func Lookup[In, Out any](node Node, path ...string) (*Typed[In, Out], bool) {
	e, ok := Find(node, path...)
	if !ok {
		return nil, false
	}
	ep, ok := e.route.(*endpoint.Endpoint[In, Out])
	if !ok {
		return nil, false
	}
	return &Typed[In, Out]{path: e.Path(), fn: ep.Bind()}, true
}
