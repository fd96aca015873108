package observability

import (
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// NewNoopTracer creates a tracer that does nothing.
func NewNoopTracer() *Tracer {
	return &Tracer{
		tracer:      tracenoop.NewTracerProvider().Tracer(""),
		serviceName: "",
	}
}

// NewNoopMetrics creates metrics that do nothing.
func NewNoopMetrics() *Metrics {
	meter := noop.NewMeterProvider().Meter("")
	m := &Metrics{}

	// Note: noop meter never returns errors, but we must check them to satisfy the linter.
	m.parseDuration, _ = meter.Float64Histogram("fiql.parse.duration")       //nolint:errcheck
	m.parseCount, _ = meter.Int64Counter("fiql.parse.count")                 //nolint:errcheck
	m.errorCount, _ = meter.Int64Counter("fiql.parse.errors")                //nolint:errcheck
	m.expressionDepth, _ = meter.Int64Histogram("fiql.expression.depth")     //nolint:errcheck
	m.cacheHits, _ = meter.Int64Counter("fiql.cache.hits")                   //nolint:errcheck
	m.dbQueryDuration, _ = meter.Float64Histogram("fiql.db.query.duration")  //nolint:errcheck
	m.resultCount, _ = meter.Int64Histogram("fiql.result.count")             //nolint:errcheck

	return m
}
