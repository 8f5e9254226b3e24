package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/apikit/endpoint"
	"github.com/kbukum/apikit/util"
)

// Route is implemented by every *endpoint.Endpoint.
type Route interface {
	endpoint.Invoker
	Callable() endpoint.Invoker
	Config() endpoint.RouteConfig
	Label() string
}

// Node is a route tree. Values are Routes, nested Nodes (or plain
// map[string]any), or anything else, which is carried through unchanged.
// Trees must not contain cycles.
type Node map[string]any

// Tree mirrors a Node with every Route replaced by its bound function.
type Tree map[string]any

// Compose builds a Tree from node. Every call builds new functions.
func Compose(node Node) Tree {
	tree := make(Tree, len(node))
	for k, v := range node {
		switch val := v.(type) {
		case Route:
			tree[k] = val.Callable()
		case Node:
			tree[k] = Compose(val)
		case map[string]any:
			tree[k] = Compose(Node(val))
		default:
			tree[k] = v
		}
	}
	return tree
}

// Lookup returns the typed function at path.
func Lookup[In, Out any](tree Tree, path ...string) (endpoint.Func[In, Out], bool) {
	v, ok := tree.get(path)
	if !ok {
		return nil, false
	}
	fn, ok := v.(endpoint.Func[In, Out])
	return fn, ok
}

// Call invokes the function at a dotted path such as "users.get".
func (t Tree) Call(ctx context.Context, dotted string, input any, params endpoint.Params) (*endpoint.Result[any], error) {
	v, ok := t.get(strings.Split(dotted, "."))
	if !ok {
		return nil, fmt.Errorf("router: no route %q", dotted)
	}
	inv, ok := v.(endpoint.Invoker)
	if !ok {
		return nil, fmt.Errorf("router: %q is not a route", dotted)
	}
	return inv.Invoke(ctx, input, params)
}

func (t Tree) get(path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var cur any = t
	for _, key := range path {
		sub, ok := cur.(Tree)
		if !ok {
			return nil, false
		}
		if cur, ok = sub[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Walk calls fn for every Route in node with its key path, visiting keys in
// sorted order. It stops at the first error fn returns.
func Walk(node Node, fn func(path []string, r Route) error) error {
	return walk(node, nil, fn)
}

func walk(node Node, prefix []string, fn func([]string, Route) error) error {
	for _, k := range util.SortedKeys(node) {
		path := append(append(make([]string, 0, len(prefix)+1), prefix...), k)
		switch val := node[k].(type) {
		case Route:
			if err := fn(path, val); err != nil {
				return err
			}
		case Node:
			if err := walk(val, path, fn); err != nil {
				return err
			}
		case map[string]any:
			if err := walk(Node(val), path, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Find returns the value stored at path in node.
func Find(node Node, path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var cur any = node
	for _, key := range path {
		var sub Node
		switch n := cur.(type) {
		case Node:
			sub = n
		case map[string]any:
			sub = n
		default:
			return nil, false
		}
		var ok bool
		if cur, ok = sub[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}
