package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every apikit span.
const TracerName = "github.com/kbukum/apikit"

// Span names.
const (
	SpanHTTPRequest     = "http.request"
	SpanEndpointExecute = "endpoint.execute"
)

// Attribute keys. HTTP and resource keys follow the OpenTelemetry semantic
// conventions.
const (
	AttrServiceName    = "service.name"
	AttrServiceVersion = "service.version"
	AttrEnvironment    = "deployment.environment"
	AttrHTTPMethod     = "http.request.method"
	AttrURL            = "url.full"
	AttrHTTPStatus     = "http.response.status_code"
	AttrClient         = "apikit.client"
	AttrEndpoint       = "apikit.endpoint"
	AttrDurationMs     = "apikit.duration_ms"
	AttrErrorMessage   = "error.message"
)

// StartSpan starts a span on the apikit tracer of the global provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, opts...)
}

// StartClientSpan opens the span around one outbound request.
func StartClientSpan(ctx context.Context, method, url string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrHTTPMethod, method),
			attribute.String(AttrURL, url),
		),
	)
}

// EndClientSpan ends span. err or a 5xx status marks it failed; status 0
// means no response arrived and is not recorded.
func EndClientSpan(span trace.Span, status int, err error) {
	defer span.End()
	if status != 0 {
		span.SetAttributes(attribute.Int(AttrHTTPStatus, status))
	}
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status >= http.StatusInternalServerError:
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// InjectHeaders writes the trace context of ctx into h.
func InjectHeaders(ctx context.Context, h http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(h))
}

// Annotate adds attributes to the span in ctx, if it is recording.
func Annotate(ctx context.Context, attrs ...attribute.KeyValue) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}

// RecordError marks the span in ctx failed.
func RecordError(ctx context.Context, err error) {
	if span := trace.SpanFromContext(ctx); err != nil && span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
