package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNewTracer(t *testing.T) {
	tp := tracenoop.NewTracerProvider()
	tracer := NewTracer(tp, "test-service", "1.0.0")

	if tracer == nil {
		t.Fatal("NewTracer() should return non-nil tracer")
		return
	}
	if tracer.serviceName != "test-service" {
		t.Errorf("serviceName = %q, want %q", tracer.serviceName, "test-service")
	}
}

func TestTracer_StartParse(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider(), "test-service", "")

	for _, include := range []bool{true, false} {
		ctx, span := tracer.StartParse(context.Background(), "name==foo;age=gt=21", include)
		tracer.EndParse(span, 1, 2, false)
		span.End()

		if ctx == nil {
			t.Error("StartParse() should return non-nil context")
		}
	}
}

func TestLoggerWithTrace_NoSpan(t *testing.T) {
	logger := slog.Default()

	if got := LoggerWithTrace(context.Background(), logger); got != logger {
		t.Error("LoggerWithTrace() should return the same logger without a span")
	}
}

func TestLoggerWithTrace_ValidSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		SpanID:  trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	LoggerWithTrace(ctx, logger).Info("parsed")

	out := buf.String()
	if !strings.Contains(out, LogFieldTraceID+"="+sc.TraceID().String()) {
		t.Errorf("expected trace id in log output, got %q", out)
	}
	if !strings.Contains(out, LogFieldSpanID+"="+sc.SpanID().String()) {
		t.Errorf("expected span id in log output, got %q", out)
	}
}
