package httpclient

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/kbukum/apikit/util"
)

// BuildURL joins baseURL (trailing slashes removed), basePath and path
// (leading slash enforced) and appends the encoded params.
func BuildURL(baseURL, basePath, path string, params Params) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := strings.TrimRight(baseURL, "/") + basePath + path
	if q := EncodeParams(params); q != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + q
	}
	return u
}

// EncodeParams renders params as a query string in sorted key order.
// Nil values and nil pointers are skipped. Slices and arrays repeat the key
// once per element.
func EncodeParams(params Params) string {
	if len(params) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range params {
		addParam(values, k, v)
	}
	return values.Encode()
}

func addParam(values url.Values, key string, v any) {
	if util.IsNil(v) {
		return
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			values.Add(key, string(rv.Bytes()))
			return
		}
		for i := 0; i < rv.Len(); i++ {
			addParam(values, key, rv.Index(i).Interface())
		}
		return
	}
	values.Add(key, formatParam(rv.Interface()))
}

func formatParam(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
