package query

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kbukum/apikit/endpoint"
	"github.com/kbukum/apikit/util"
)

// Key is a cache key: the route's key path, optionally followed by one
// SortedParams element.
type Key []any

// String renders the key as JSON. Equal keys render identically.
func (k Key) String() string {
	b, err := json.Marshal([]any(k))
	if err != nil {
		return fmt.Sprint([]any(k))
	}
	return string(b)
}

// Equal reports whether both keys render identically.
func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}

// Param is one entry of SortedParams.
type Param struct {
	Key   string
	Value any
}

// SortedParams is a params mapping with its keys in ascending order.
type SortedParams []Param

// SortParams canonicalizes params so that equal sets compare equal
// regardless of insertion order.
func SortParams(params endpoint.Params) SortedParams {
	out := make(SortedParams, 0, len(params))
	for _, k := range util.SortedKeys(params) {
		out = append(out, Param{Key: k, Value: params[k]})
	}
	return out
}

// Map returns the params as a map.
func (p SortedParams) Map() endpoint.Params {
	m := make(endpoint.Params, len(p))
	for _, kv := range p {
		m[kv.Key] = kv.Value
	}
	return m
}

// MarshalJSON renders the params as a JSON object in key order.
func (p SortedParams) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func getKey(path []string, params endpoint.Params) Key {
	key := make(Key, 0, len(path)+1)
	for _, p := range path {
		key = append(key, p)
	}
	if len(params) > 0 {
		key = append(key, SortParams(params))
	}
	return key
}
