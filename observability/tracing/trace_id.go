package tracing

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// RequestTraceID resolves the trace ID a request is correlated under.
// With an active span it is the span's trace ID; otherwise a fresh
// "man-" prefixed UUID, so log correlation keeps working when tracing
// is disabled.
func RequestTraceID(ctx context.Context) string {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if spanCtx.HasTraceID() {
		return spanCtx.TraceID().String()
	}

	return "man-" + uuid.NewString()
}
