// Package observability wires OpenTelemetry into apikit.
//
// Setup installs OTLP/HTTP exporters for the features a Config enables and
// returns the function that flushes them:
//
//	shutdown, err := observability.Setup(ctx, observability.Config{
//		ServiceName: "billing-sync",
//		Tracing:     true,
//		Metrics:     true,
//		Insecure:    true,
//	})
//	defer shutdown(ctx)
//
// httpclient opens an "http.request" client span per request and injects
// the trace context into outbound headers. endpoint wraps each execution in
// an "endpoint.execute" Operation. Request counters are recorded when a
// client is given Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("apikit"))
//	client, err := httpclient.New(cfg, httpclient.WithMetrics(metrics))
package observability
