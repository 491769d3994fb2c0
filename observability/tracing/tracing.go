// Package tracing wires the service into OpenTelemetry: one global
// tracer provider, an OTLP gRPC exporter, and W3C context propagation.
package tracing

import (
	"context"
	"net"
	"time"

	"github.com/code19m/errx"
	"github.com/spf13/cast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.23.1"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/geodepot/geodepot/meta"
)

// InitGlobalTracer installs the global tracer provider and starts
// exporting spans to the OTLP endpoint named in cfg. The returned
// function flushes and stops the provider; call it on shutdown. With
// cfg.Disable set, a no-op provider is installed instead.
func InitGlobalTracer(cfg Config) (func() error, error) {
	if cfg.Disable {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func() error { return nil }, nil
	}

	client := otlptracegrpc.NewClient(
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(net.JoinHostPort(cfg.ExporterHost, cast.ToString(cfg.ExporterPort))),
		otlptracegrpc.WithReconnectionPeriod(reconnectionPeriod),
	)

	exporter, err := otlptrace.New(context.Background(), client)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	tp := trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SampleRate))),
		trace.WithSpanProcessor(trace.NewBatchSpanProcessor(exporter)),
		trace.WithResource(buildResource(cfg.Tags)),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetTracerProvider(tp)

	return stopFunc(tp), nil
}

// buildResource describes this process to the trace backend: service
// identity plus the operator-supplied tags.
func buildResource(tags map[string]string) *resource.Resource {
	name, version := meta.GetServiceInfo()

	attrs := make([]attribute.KeyValue, 0, len(tags)+2)
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	attrs = append(attrs,
		semconv.ServiceNameKey.String(name),
		semconv.ServiceVersionKey.String(version),
	)

	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}

func stopFunc(tp *trace.TracerProvider) func() error {
	return func() error {
		const drainTimeout = 5 * time.Second

		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()

		if err := tp.ForceFlush(ctx); err != nil {
			return errx.Wrap(err)
		}

		return errx.Wrap(tp.Shutdown(ctx))
	}
}
