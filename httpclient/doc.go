// Package httpclient builds and performs outbound HTTP requests from shared
// client defaults.
//
// A Client joins its base URL, base path and the request path, encodes query
// parameters, layers default and per-request headers, applies authentication
// and enforces a per-request timeout. Every received response is returned as
// a Response regardless of its status code; failures before a response
// arrives are returned as *Error values carrying the built URL and the
// request options.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 10 * time.Second,
//	    Auth:    httpclient.BearerAuth("my-token"),
//	})
//
//	resp, err := client.Execute(ctx, httpclient.RequestOptions{
//	    Path:   "/users",
//	    Params: httpclient.Params{"page": 1},
//	})
//
// Typed endpoints are built on top of a Client by the endpoint package.
package httpclient
