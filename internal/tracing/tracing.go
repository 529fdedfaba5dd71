// Package tracing wires OpenTelemetry spans around the external calls.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/logging"
	"github.com/pdiddy/research-digest/pkg/types"
)

const defaultServiceName = "research-digest"

// tracer is always usable; without Initialize it comes from the no-op
// global provider.
var tracer = otel.Tracer(defaultServiceName)

// Initialize installs an OTLP exporting tracer provider when tracing is
// enabled. The returned function flushes and stops the provider.
func Initialize(cfg types.TracingConfig, logger *zap.Logger) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	logger = logging.OrNop(logger)

	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	tracer = otel.Tracer(name)

	if !cfg.Enabled {
		logger.Debug("Tracing disabled")
		return noop, nil
	}

	endpoint := cfg.OTLPEndpoint
	if endpoint == "" {
		endpoint = "localhost:4317"
	}

	exporter, err := otlptracegrpc.New(
		context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return noop, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", name)),
	)
	if err != nil {
		return noop, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer(name)

	logger.Info("Tracing initialized", zap.String("endpoint", endpoint))
	return tp.Shutdown, nil
}

// StartSpan creates a new span with the given name.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return tracer.Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

// RecordError marks span as failed with msg.
func RecordError(span oteltrace.Span, msg string) {
	span.SetStatus(codes.Error, msg)
}
