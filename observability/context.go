package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one endpoint execution from start to finish.
type Operation struct {
	Client    string
	Endpoint  string
	StartTime time.Time
	span      trace.Span
}

type operationKey struct{}

// StartOperation opens an endpoint span and stores the Operation in the
// returned context.
func StartOperation(ctx context.Context, client, endpoint string) (context.Context, *Operation) {
	op := &Operation{
		Client:    client,
		Endpoint:  endpoint,
		StartTime: time.Now(),
	}
	ctx, op.span = StartSpan(ctx, SpanEndpointExecute, trace.WithAttributes(
		attribute.String(AttrClient, client),
		attribute.String(AttrEndpoint, endpoint),
	))
	return context.WithValue(ctx, operationKey{}, op), op
}

// OperationFromContext returns the Operation stored by StartOperation, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// End closes the span with the final status and error.
func (op *Operation) End(status int, err error) {
	op.span.SetAttributes(attribute.Int64(AttrDurationMs, op.Duration().Milliseconds()))
	if err != nil {
		op.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	EndClientSpan(op.span, status, err)
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
