package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with FIQL-specific span creation methods.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider. The service
// name and version are attached to the instrumentation scope.
func NewTracer(tp trace.TracerProvider, serviceName, serviceVersion string) *Tracer {
	opts := []trace.TracerOption{
		trace.WithInstrumentationAttributes(attribute.String("service.name", serviceName)),
	}
	if serviceVersion != "" {
		opts = append(opts, trace.WithInstrumentationVersion(serviceVersion))
	}
	return &Tracer{
		tracer:      tp.Tracer(TracerName, opts...),
		serviceName: serviceName,
	}
}

// StartSpan starts a new span with the given name and attributes.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}

// StartParse starts a span for parsing a FIQL string. The raw input is only
// recorded when includeFilter is set.
func (t *Tracer) StartParse(ctx context.Context, input string, includeFilter bool) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		OperationAttr(OpParse),
		InputLengthAttr(len(input)),
	}
	if includeFilter {
		attrs = append(attrs, FilterAttr(input))
	}
	return t.tracer.Start(ctx, SpanParse, trace.WithAttributes(attrs...))
}

// EndParse records the shape of the parsed expression on the span.
func (t *Tracer) EndParse(span trace.Span, depth, constraints int, cacheHit bool) {
	span.SetAttributes(
		DepthAttr(depth),
		ConstraintsAttr(constraints),
		CacheHitAttr(cacheHit),
	)
}

// StartDBQuery starts a span for a database query.
func (t *Tracer) StartDBQuery(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.operation", operation))
	return t.tracer.Start(ctx, SpanDBQuery, trace.WithAttributes(attrs...))
}

// RecordError records an error on the span.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// LoggerWithTrace returns a logger enriched with trace context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, span.SpanContext().TraceID().String()),
		slog.String(LogFieldSpanID, span.SpanContext().SpanID().String()),
	)
}
