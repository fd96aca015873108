// Package observability provides OpenTelemetry-based instrumentation for FIQL
// parsing and the query layers built on top of it.
//
// It supports distributed tracing, metrics collection and Server-Timing
// headers. All features are opt-in. When not configured, no-op
// implementations are used.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-fiql"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-fiql"
)

// Span names.
const (
	SpanParse   = "fiql.parse"
	SpanRequest = "fiql.request"
	SpanFilter  = "fiql.filter"
	SpanDBQuery = "db.query"
)

// FIQL semantic attribute keys following OpenTelemetry conventions.
const (
	AttrFilter      = "fiql.filter"
	AttrInputLength = "fiql.input.length"
	AttrDepth       = "fiql.expression.depth"
	AttrConstraints = "fiql.expression.constraints"
	AttrCacheHit    = "fiql.cache.hit"
	AttrErrorKind   = "fiql.error.kind"
	AttrOperation   = "fiql.operation"
	AttrResultCount = "fiql.result.count"
)

// Operation types for the fiql.operation attribute.
const (
	OpParse  = "parse"
	OpFilter = "filter"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldFilter      = "fiql.filter"
	LogFieldTraceID     = "trace_id"
	LogFieldSpanID      = "span_id"
	LogFieldDuration    = "duration_ms"
	LogFieldDepth       = "depth"
	LogFieldConstraints = "constraints"
	LogFieldCacheHit    = "cache_hit"
	LogFieldResultCount = "result_count"
	LogFieldError       = "error"
)

// FilterAttr creates an attribute for the raw FIQL string.
func FilterAttr(filter string) attribute.KeyValue {
	return attribute.String(AttrFilter, filter)
}

// InputLengthAttr creates an attribute for the input length in bytes.
func InputLengthAttr(n int) attribute.KeyValue {
	return attribute.Int(AttrInputLength, n)
}

// DepthAttr creates an attribute for the depth of a parsed expression.
func DepthAttr(depth int) attribute.KeyValue {
	return attribute.Int(AttrDepth, depth)
}

// ConstraintsAttr creates an attribute for the number of constraints.
func ConstraintsAttr(n int) attribute.KeyValue {
	return attribute.Int(AttrConstraints, n)
}

// CacheHitAttr creates an attribute telling whether the parse cache answered.
func CacheHitAttr(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// ErrorKindAttr creates an attribute for the kind of a parse error.
func ErrorKindAttr(kind string) attribute.KeyValue {
	return attribute.String(AttrErrorKind, kind)
}

// OperationAttr creates an attribute for the operation type.
func OperationAttr(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// ResultCountAttr creates an attribute for the number of rows returned.
func ResultCountAttr(count int64) attribute.KeyValue {
	return attribute.Int64(AttrResultCount, count)
}
