package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the FIQL metric instruments.
type Metrics struct {
	parseDuration   metric.Float64Histogram
	parseCount      metric.Int64Counter
	errorCount      metric.Int64Counter
	expressionDepth metric.Int64Histogram
	cacheHits       metric.Int64Counter
	dbQueryDuration metric.Float64Histogram
	resultCount     metric.Int64Histogram
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Instrument creation only fails on invalid parameters; fall back to a
	// bare instrument so metrics stay usable.
	var err error

	m.parseDuration, err = meter.Float64Histogram(
		"fiql.parse.duration",
		metric.WithDescription("Duration of FIQL parses in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.parseDuration, _ = meter.Float64Histogram("fiql.parse.duration")
	}

	m.parseCount, err = meter.Int64Counter(
		"fiql.parse.count",
		metric.WithDescription("Total number of FIQL parses"),
		metric.WithUnit("{parse}"),
	)
	if err != nil {
		m.parseCount, _ = meter.Int64Counter("fiql.parse.count")
	}

	m.errorCount, err = meter.Int64Counter(
		"fiql.parse.errors",
		metric.WithDescription("Total number of rejected FIQL strings"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.errorCount, _ = meter.Int64Counter("fiql.parse.errors")
	}

	m.expressionDepth, err = meter.Int64Histogram(
		"fiql.expression.depth",
		metric.WithDescription("Nesting depth of parsed FIQL expressions"),
		metric.WithUnit("{level}"),
	)
	if err != nil {
		m.expressionDepth, _ = meter.Int64Histogram("fiql.expression.depth")
	}

	m.cacheHits, err = meter.Int64Counter(
		"fiql.cache.hits",
		metric.WithDescription("Parse cache lookups, labelled by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		m.cacheHits, _ = meter.Int64Counter("fiql.cache.hits")
	}

	m.dbQueryDuration, err = meter.Float64Histogram(
		"fiql.db.query.duration",
		metric.WithDescription("Duration of database queries in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.dbQueryDuration, _ = meter.Float64Histogram("fiql.db.query.duration")
	}

	m.resultCount, err = meter.Int64Histogram(
		"fiql.result.count",
		metric.WithDescription("Number of rows matched by a filter"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		m.resultCount, _ = meter.Int64Histogram("fiql.result.count")
	}

	return m
}

// RecordParse records a successful parse.
func (m *Metrics) RecordParse(ctx context.Context, duration time.Duration, depth int, cacheHit bool) {
	attrs := metric.WithAttributes(CacheHitAttr(cacheHit))
	m.parseDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.parseCount.Add(ctx, 1, attrs)
	m.expressionDepth.Record(ctx, int64(depth))
}

// RecordParseError records a rejected input.
func (m *Metrics) RecordParseError(ctx context.Context, kind string) {
	m.errorCount.Add(ctx, 1, metric.WithAttributes(ErrorKindAttr(kind)))
}

// RecordCacheLookup records a parse cache lookup.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(CacheHitAttr(hit)))
}

// RecordDBQuery records metrics for a database query.
func (m *Metrics) RecordDBQuery(ctx context.Context, operation string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("db.operation", operation))
	m.dbQueryDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordResultCount records the number of rows a filter matched.
func (m *Metrics) RecordResultCount(ctx context.Context, count int64) {
	m.resultCount.Record(ctx, count, metric.WithAttributes(OperationAttr(OpFilter)))
}
