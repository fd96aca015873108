package observability

import (
	"net/http"

	servertiming "github.com/mitchellh/go-server-timing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPMiddleware returns an HTTP middleware that instruments requests.
// Tracing and HTTP metrics come from otelhttp, which also continues traces
// carried by incoming W3C trace-context headers. Every request gets a database
// time accumulator; when Server-Timing is enabled the response carries a
// "total" metric and, if any database work happened before the header was
// written, a "db" metric.
func HTTPMiddleware(cfg *Config) func(http.Handler) http.Handler {
	if cfg == nil {
		// Return a passthrough middleware if observability is not configured
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithDBTimeAccumulator(r.Context())
			r = r.WithContext(ctx)

			total := StartServerTimingWithDesc(ctx, "total", "Total request duration")
			rec := &timingRecorder{ResponseWriter: w, r: r, total: total}
			next.ServeHTTP(rec, r)
			rec.flushTiming()
		})

		if cfg.ServerTimingEnabled() {
			handler = servertiming.Middleware(handler, nil)
		}

		if !cfg.IsEnabled() {
			return handler
		}

		opts := []otelhttp.Option{otelhttp.WithPropagators(cfg.Propagator())}
		if cfg.TracerProvider != nil {
			opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
		}
		if cfg.MeterProvider != nil {
			opts = append(opts, otelhttp.WithMeterProvider(cfg.MeterProvider))
		}
		return otelhttp.NewHandler(handler, SpanRequest, opts...)
	}
}

// timingRecorder adds the accumulated timings right before the header is sent.
type timingRecorder struct {
	http.ResponseWriter
	r     *http.Request
	total *ServerTimingMetric
	wrote bool
}

func (t *timingRecorder) WriteHeader(code int) {
	t.flushTiming()
	t.ResponseWriter.WriteHeader(code)
}

func (t *timingRecorder) Write(b []byte) (int, error) {
	t.flushTiming()
	return t.ResponseWriter.Write(b)
}

func (t *timingRecorder) flushTiming() {
	if t.wrote {
		return
	}
	t.wrote = true
	ctx := t.r.Context()
	if acc := DBTimeAccumulatorFromContext(ctx); acc != nil && acc.Duration() > 0 {
		RecordServerTiming(ctx, "db", acc.Duration())
	}
	t.total.Stop()
}
