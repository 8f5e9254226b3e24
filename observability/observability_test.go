package observability

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apikit/version"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func attr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func rate(f float64) *float64 { return &f }

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{ServiceName: "billing-sync", Tracing: true}
	cfg.ApplyDefaults()
	if cfg.Endpoint != DefaultEndpoint || cfg.Interval != DefaultInterval {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.ServiceVersion != version.String() {
		t.Errorf("got version %q", cfg.ServiceVersion)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"disabled", Config{}, ""},
		{"disabled ignores fields", Config{SampleRate: rate(3)}, ""},
		{"valid", Config{ServiceName: "s", Endpoint: "h:4318", Tracing: true, SampleRate: rate(0.25)}, ""},
		{"service name", Config{Endpoint: "h:4318", Metrics: true}, "service_name"},
		{"sample rate", Config{ServiceName: "s", Endpoint: "h:4318", Tracing: true, SampleRate: rate(1.5)}, "sample_rate"},
		{"interval", Config{ServiceName: "s", Endpoint: "h:4318", Metrics: true, Interval: -time.Second}, "interval"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			switch {
			case tc.want == "" && err != nil:
				t.Errorf("unexpected error %v", err)
			case tc.want != "" && (err == nil || !strings.Contains(err.Error(), tc.want)):
				t.Errorf("expected %q error, got %v", tc.want, err)
			}
		})
	}
}

func TestSampler(t *testing.T) {
	for r, want := range map[float64]string{1: "AlwaysOnSampler", 7: "AlwaysOnSampler", 0: "AlwaysOffSampler", -1: "AlwaysOffSampler"} {
		if got := sampler(r).Description(); got != want {
			t.Errorf("sampler(%v) = %s, want %s", r, got, want)
		}
	}
	if got := sampler(0.5).Description(); !strings.HasPrefix(got, "TraceIDRatioBased") {
		t.Errorf("got %s", got)
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{ServiceName: "svc", ServiceVersion: "1.2.3"})
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	if v, ok := res.Set().Value(attribute.Key(AttrServiceName)); !ok || v.AsString() != "svc" {
		t.Errorf("got service.name %v", v)
	}
	if _, ok := res.Set().Value(attribute.Key(AttrEnvironment)); ok {
		t.Error("empty environment should be omitted")
	}
}

func TestSetup_Disabled(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	defer otel.SetTextMapPropagator(prev)

	shutdown, err := Setup(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
	if fields := otel.GetTextMapPropagator().Fields(); len(fields) == 0 {
		t.Error("expected the trace context propagator to be installed")
	}
}

func TestSetup_Enabled(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	shutdown, err := Setup(context.Background(), Config{
		ServiceName: "test-service",
		Endpoint:    "127.0.0.1:1",
		Insecure:    true,
		Tracing:     true,
		Metrics:     true,
		SampleRate:  rate(0.5),
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected sdk tracer provider, got %T", otel.GetTracerProvider())
	}
	// Nothing listens on the endpoint; only bound the flush.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}

func TestSetup_Invalid(t *testing.T) {
	if _, err := Setup(context.Background(), Config{Tracing: true}); err == nil {
		t.Fatal("expected missing service name to fail")
	}
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) (map[string]int64, map[string][]attribute.Set) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	sums, sets := map[string]int64{}, map[string][]attribute.Set{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
					sets[m.Name] = append(sets[m.Name], dp.Attributes)
				}
			}
		}
	}
	return sums, sets
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := context.Background()
	m.Started(ctx)
	m.Finished(ctx, Request{Client: "users-api", Endpoint: "users.get", Status: 404, Duration: 20 * time.Millisecond})
	m.Started(ctx)
	m.Finished(ctx, Request{Client: "users-api", Endpoint: "users.get", ErrorType: "CONNECTION_FAILED"})

	sums, sets := collectSums(t, reader)
	if sums[MetricRequestTotal] != 2 || sums[MetricRequestActive] != 0 || sums[MetricErrorTotal] != 1 {
		t.Errorf("unexpected sums %v", sums)
	}
	statuses := map[string]bool{}
	for _, set := range sets[MetricRequestTotal] {
		v, _ := set.Value("status")
		statuses[v.AsString()] = true
	}
	if !statuses["404"] || !statuses["none"] {
		t.Errorf("unexpected status labels %v", statuses)
	}
	if v, _ := sets[MetricErrorTotal][0].Value("type"); v.AsString() != "CONNECTION_FAILED" {
		t.Errorf("unexpected error type %v", v)
	}
}

func TestMetrics_NilAndNoop(t *testing.T) {
	var m *Metrics
	m.Started(context.Background())
	m.Finished(context.Background(), Request{})

	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	m.Started(context.Background())
	m.Finished(context.Background(), Request{Status: 200})
}

func TestClientSpan(t *testing.T) {
	rec := recordSpans(t)

	_, ok := StartClientSpan(context.Background(), http.MethodGet, "https://api.example.com/users")
	EndClientSpan(ok, http.StatusOK, nil)
	_, refused := StartClientSpan(context.Background(), http.MethodPost, "https://api.example.com/users")
	EndClientSpan(refused, 0, stderrors.New("connection refused"))
	_, bad := StartClientSpan(context.Background(), http.MethodGet, "https://api.example.com/users")
	EndClientSpan(bad, http.StatusBadGateway, nil)

	spans := rec.Ended()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != SpanHTTPRequest || s.SpanKind() != trace.SpanKindClient {
		t.Errorf("unexpected span %s %v", s.Name(), s.SpanKind())
	}
	if v, _ := attr(s.Attributes(), AttrHTTPMethod); v.AsString() != http.MethodGet {
		t.Errorf("got method %v", v)
	}
	if v, _ := attr(s.Attributes(), AttrHTTPStatus); v.AsInt64() != 200 {
		t.Errorf("got status %v", v)
	}
	if s.Status().Code == codes.Error {
		t.Error("a 200 should not fail the span")
	}

	if spans[1].Status().Code != codes.Error || spans[1].Status().Description != "connection refused" {
		t.Errorf("unexpected status %+v", spans[1].Status())
	}
	if _, ok := attr(spans[1].Attributes(), AttrHTTPStatus); ok {
		t.Error("no status attribute without a response")
	}
	if spans[2].Status().Code != codes.Error {
		t.Error("a 502 should fail the span")
	}
}

func TestInjectHeaders(t *testing.T) {
	recordSpans(t)
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	ctx, span := StartSpan(context.Background(), "parent")
	defer span.End()

	h := http.Header{}
	InjectHeaders(ctx, h)
	want := span.SpanContext().TraceID().String()
	if got := h.Get("traceparent"); !strings.Contains(got, want) {
		t.Errorf("traceparent %q should carry trace id %s", got, want)
	}
}

func TestAnnotateAndRecordError(t *testing.T) {
	rec := recordSpans(t)

	ctx, span := StartSpan(context.Background(), "annotated")
	Annotate(ctx, attribute.String(AttrClient, "users-api"), attribute.Int("attempt", 2))
	RecordError(ctx, nil)
	RecordError(ctx, stderrors.New("boom"))
	span.End()

	s := rec.Ended()[0]
	if v, _ := attr(s.Attributes(), AttrClient); v.AsString() != "users-api" {
		t.Errorf("got %v", v)
	}
	if s.Status().Code != codes.Error || len(s.Events()) != 1 {
		t.Errorf("expected one recorded error, got %+v %d", s.Status(), len(s.Events()))
	}

	Annotate(context.Background(), attribute.Bool("ignored", true))
	RecordError(context.Background(), stderrors.New("no span"))
}

func TestOperation(t *testing.T) {
	rec := recordSpans(t)

	if OperationFromContext(context.Background()) != nil {
		t.Fatal("expected no operation")
	}
	ctx, op := StartOperation(context.Background(), "users-api", "users.get")
	if OperationFromContext(ctx) != op {
		t.Fatal("expected operation in context")
	}
	op.End(http.StatusNotFound, nil)

	_, failed := StartOperation(context.Background(), "users-api", "users.create")
	failed.End(http.StatusInternalServerError, stderrors.New("output rejected"))

	spans := rec.Ended()
	if spans[0].Name() != SpanEndpointExecute {
		t.Errorf("got %s", spans[0].Name())
	}
	if v, _ := attr(spans[0].Attributes(), AttrEndpoint); v.AsString() != "users.get" {
		t.Errorf("got endpoint %v", v)
	}
	if spans[0].Status().Code == codes.Error {
		t.Error("a 404 should not fail the span")
	}
	if v, _ := attr(spans[1].Attributes(), AttrErrorMessage); v.AsString() != "output rejected" {
		t.Errorf("got %v", v)
	}
}
