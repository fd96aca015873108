package fiql

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestNewParserDefaults(t *testing.T) {
	p := NewParser()
	if p.logger == nil {
		t.Error("logger should default to slog.Default()")
	}
	if p.cache != nil {
		t.Error("cache should be disabled by default")
	}
	if p.obs.IsEnabled() {
		t.Error("observability should be disabled without providers")
	}

	expr, err := p.Parse(context.Background(), "foo==bar")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if expr.String() != "foo==bar" {
		t.Errorf("String() = %q, want foo==bar", expr.String())
	}
}

func TestParserWithProviders(t *testing.T) {
	p := NewParser(
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noop.NewMeterProvider()),
		WithFilterTracing(),
	)
	if !p.obs.IsEnabled() {
		t.Error("observability should be enabled with providers")
	}
	if !p.obs.FilterTracingEnabled() {
		t.Error("filter tracing should be enabled")
	}

	if _, err := p.Parse(context.Background(), "a==1;b==2"); err != nil {
		t.Errorf("Parse() unexpected error: %v", err)
	}
	if _, err := p.Parse(context.Background(), "a==1;"); !IsFormatError(err) {
		t.Errorf("Parse() error = %v, want format error", err)
	}
}

func TestParserCacheReturnsCopies(t *testing.T) {
	p := NewParser(WithCache(8))
	ctx := context.Background()

	first, err := p.Parse(ctx, "a==1,b==2")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if p.cache.Len() != 1 {
		t.Fatalf("cache.Len() = %d, want 1", p.cache.Len())
	}

	// Mutating a returned tree must not leak into later results.
	if _, err := first.AddElement(MustConstraint("c", "==", "3")); err != nil {
		t.Fatalf("AddElement() unexpected error: %v", err)
	}

	second, err := p.Parse(ctx, "a==1,b==2")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if second == first {
		t.Error("cache hit should return a new tree")
	}
	if second.String() != "a==1,b==2" {
		t.Errorf("String() = %q, want a==1,b==2", second.String())
	}
}

func TestParserCacheHitBuildsLikeMiss(t *testing.T) {
	p := NewParser(WithCache(8))
	ctx := context.Background()

	var got []string
	for i := 0; i < 2; i++ {
		expr, err := p.Parse(ctx, "a==1,b==2;c==3")
		if err != nil {
			t.Fatalf("Parse() unexpected error: %v", err)
		}
		expr, err = expr.And(MustConstraint("d", "==", "4"))
		if err != nil {
			t.Fatalf("And() unexpected error: %v", err)
		}
		got = append(got, expr.ToValue().String())
	}

	want := "[OR, (a, ==, 1), [AND, (b, ==, 2), (c, ==, 3), (d, ==, 4)]]"
	for i, v := range got {
		if v != want {
			t.Errorf("parse %d extended to %s, want %s", i+1, v, want)
		}
	}
}

func TestParserCacheSkipsErrors(t *testing.T) {
	p := NewParser(WithCache(8))
	if _, err := p.Parse(context.Background(), "a=="); err == nil {
		t.Fatal("Parse() should fail")
	}
	if p.cache.Len() != 0 {
		t.Errorf("cache.Len() = %d, want 0", p.cache.Len())
	}
}

func TestParserLimits(t *testing.T) {
	p := NewParser(WithMaxDepth(2), WithMaxLength(12))
	ctx := context.Background()

	if _, err := p.Parse(ctx, "((a))"); err != nil {
		t.Errorf("Parse() unexpected error: %v", err)
	}

	_, err := p.Parse(ctx, "(((a)))")
	fiqlErr, ok := err.(*Error)
	if !ok || !IsFormatError(err) {
		t.Fatalf("Parse() error = %v, want format error", err)
	}
	if fiqlErr.Offset != 2 {
		t.Errorf("Offset = %d, want 2", fiqlErr.Offset)
	}

	if _, err := p.Parse(ctx, "name==abcdefghij"); !IsFormatError(err) {
		t.Errorf("Parse() error = %v, want format error for long input", err)
	}
}

func TestParserLogging(t *testing.T) {
	var buf bytes.Buffer
	p := NewParser(WithLogger(newTestLogger(&buf)), WithCache(4))
	ctx := context.Background()

	if _, err := p.Parse(ctx, "a==1;(b==2,c==3)"); err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "FIQL parsed") {
		t.Errorf("log should contain the parse message, got %q", out)
	}
	if !strings.Contains(out, "depth=2") || !strings.Contains(out, "constraints=3") {
		t.Errorf("log should contain depth and constraint count, got %q", out)
	}
	if !strings.Contains(out, "cache_hit=false") {
		t.Errorf("first parse should be a cache miss, got %q", out)
	}

	buf.Reset()
	if _, err := p.Parse(ctx, "a==1;(b==2,c==3)"); err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "cache_hit=true") {
		t.Errorf("second parse should be a cache hit, got %q", buf.String())
	}

	buf.Reset()
	if _, err := p.Parse(ctx, "a==1)"); err == nil {
		t.Fatal("Parse() should fail")
	}
	if !strings.Contains(buf.String(), "FIQL parse failed") {
		t.Errorf("log should contain the failure message, got %q", buf.String())
	}
}

func TestParserConcurrent(t *testing.T) {
	p := NewParser(WithCache(2))
	inputs := []string{"a==1", "a==1;b==2", "a==1,b==2;c==3", "(a==1,b==2);c==3"}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				input := inputs[(i+j)%len(inputs)]
				expr, err := p.Parse(context.Background(), input)
				if err != nil {
					errs <- err
					return
				}
				if expr.String() != input {
					errs <- &Error{Kind: ErrFormat, Message: "round trip mismatch", Input: input}
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestErrorKind(t *testing.T) {
	_, formatErr := Parse("a;")
	_, objectErr := NewOperator("&")

	tests := []struct {
		err  error
		want string
	}{
		{formatErr, "format"},
		{objectErr, "object"},
		{context.Canceled, "unknown"},
	}
	for _, tt := range tests {
		if got := errorKind(tt.err); got != tt.want {
			t.Errorf("errorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
