package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	MetricRequestTotal    = "apikit.client.request.total"
	MetricRequestDuration = "apikit.client.request.duration"
	MetricRequestActive   = "apikit.client.request.active"
	MetricErrorTotal      = "apikit.client.error.total"
)

// Metrics records outbound requests. A nil *Metrics records nothing.
type Metrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
	errors   metric.Int64Counter
}

// Request describes one finished request.
type Request struct {
	Client   string
	Endpoint string
	// Status is 0 when no response arrived.
	Status   int
	Duration time.Duration
	// ErrorType is empty for requests that got a response.
	ErrorType string
}

// NewMetrics creates the request instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.total, err = meter.Int64Counter(MetricRequestTotal,
		metric.WithDescription("Outbound requests by client, endpoint and status")); err != nil {
		return nil, instrumentErr(MetricRequestTotal, err)
	}
	if m.duration, err = meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Outbound request latency"), metric.WithUnit("s")); err != nil {
		return nil, instrumentErr(MetricRequestDuration, err)
	}
	if m.active, err = meter.Int64UpDownCounter(MetricRequestActive,
		metric.WithDescription("Requests awaiting a response")); err != nil {
		return nil, instrumentErr(MetricRequestActive, err)
	}
	if m.errors, err = meter.Int64Counter(MetricErrorTotal,
		metric.WithDescription("Requests that failed before a response arrived")); err != nil {
		return nil, instrumentErr(MetricErrorTotal, err)
	}
	return &m, nil
}

func instrumentErr(name string, err error) error {
	return fmt.Errorf("instrument %s: %w", name, err)
}

// Started counts a request as in flight.
func (m *Metrics) Started(ctx context.Context) {
	if m != nil {
		m.active.Add(ctx, 1)
	}
}

// Finished records r and ends the in-flight count Started began.
func (m *Metrics) Finished(ctx context.Context, r Request) {
	if m == nil {
		return
	}
	client, endpoint := attribute.String("client", r.Client), attribute.String("endpoint", r.Endpoint)
	m.active.Add(ctx, -1)
	m.total.Add(ctx, 1, metric.WithAttributes(client, endpoint, attribute.String("status", statusLabel(r.Status))))
	m.duration.Record(ctx, r.Duration.Seconds(), metric.WithAttributes(client, endpoint))
	if r.ErrorType != "" {
		m.errors.Add(ctx, 1, metric.WithAttributes(client, endpoint, attribute.String("type", r.ErrorType)))
	}
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}
