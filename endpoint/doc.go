// Package endpoint declares typed routes on top of an httpclient.Client.
//
// Each route is one concrete Endpoint[In, Out]: its request configuration,
// an optional input schema run before sending and an optional output schema
// run over the response data.
//
//	getUser := endpoint.Route[endpoint.None, User](client, endpoint.RouteConfig{Path: "/users/1"})
//	res, err := getUser.Execute(ctx, endpoint.None{}, nil)
//	if err != nil {
//	    // the input was rejected, nothing was sent
//	}
//	if res.Error != nil {
//	    // transport failure, abort or rejected response
//	}
//
// Execute is status-code agnostic: a 404 with a JSON body is a successful
// Result carrying status 404 unless an output schema rejects the payload.
package endpoint
