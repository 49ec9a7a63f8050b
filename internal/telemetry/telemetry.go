// Package telemetry provides opt-in OTLP tracing for workspace operations
// (layout switches, preset loads, bus broadcasts). When no endpoint is
// configured every span is a no-op.
package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "estatedash/workspace"

// Tracer starts spans for workspace operations. The zero value and a nil
// *Tracer are valid and record nothing.
type Tracer struct {
	tracer   oteltrace.Tracer
	shutdown func(context.Context) error
}

// Setup creates a Tracer exporting to endpoint over OTLP/HTTP. An empty
// endpoint disables tracing. Endpoints without a scheme are treated as
// host:port and dialed without TLS.
func Setup(ctx context.Context, endpoint, serviceName string) (*Tracer, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return Disabled(), nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure()}
	if strings.Contains(endpoint, "://") {
		opts = []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	if serviceName == "" {
		serviceName = "estatedash"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &Tracer{tracer: tp.Tracer(instrumentationName), shutdown: tp.Shutdown}, nil
}

// Disabled returns a Tracer that records nothing.
func Disabled() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer(instrumentationName)}
}

// New wraps an existing provider, for tests and embedding.
func New(tp oteltrace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(instrumentationName)}
}

// Start begins a span with the given string attributes, which alternate
// key and value. Attribute keys are namespaced under "estatedash.".
func (t *Tracer) Start(ctx context.Context, name string, kv ...string) (context.Context, oteltrace.Span) {
	if t == nil || t.tracer == nil {
		return Disabled().Start(ctx, name, kv...)
	}
	return t.tracer.Start(ctx, name, oteltrace.WithAttributes(attrs(kv)...))
}

func attrs(kv []string) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, attribute.String("estatedash."+kv[i], kv[i+1]))
	}
	return out
}

// Enabled reports whether spans are exported.
func (t *Tracer) Enabled() bool {
	return t != nil && t.shutdown != nil
}

// Shutdown flushes pending spans.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}
