// Package fiql parses FIQL (Feed Item Query Language) strings into expression
// trees and renders them back to canonical FIQL text or to a simplified value
// form.
//
// A FIQL string is a list of constraints joined by ";" (AND) and "," (OR),
// optionally grouped with parentheses. AND binds tighter than OR:
//
//	expr, err := fiql.Parse("last_name==foo*,(age=lt=55;age=gt=5)")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(expr.ToValue())
//	// [OR, (last_name, ==, foo*), [AND, (age, <, 55), (age, >, 5)]]
//
// For services that parse filters on every request, NewParser returns a
// Parser with logging, tracing, metrics and a parse cache.
package fiql

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nlstn/go-fiql/internal/cache"
	"github.com/nlstn/go-fiql/internal/observability"
)

// Parse parses a FIQL string and returns the top-most expression.
//
// Malformed input yields an *Error of kind ErrFormat; no partial tree is
// returned.
func Parse(input string) (*Expression, error) {
	return parseExpression(input, limits{})
}

// MustParse is like Parse but panics if the input can not be parsed. It
// simplifies initialization of filters held in package variables.
func MustParse(input string) *Expression {
	expr, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return expr
}

// Option configures a Parser.
type Option func(*config)

type config struct {
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	traceFilters   bool
	cacheSize      int
	limits         limits
}

// WithLogger sets the logger. Parses are logged at debug level. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTracerProvider enables a "fiql.parse" span per parse.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider enables parse metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// WithFilterTracing records the raw input on parse spans. Filters can carry
// user data, so it is off by default.
func WithFilterTracing() Option {
	return func(c *config) {
		c.traceFilters = true
	}
}

// WithCache keeps up to size parsed expressions keyed by their input. Callers
// always receive a private copy. A non-positive size disables the cache.
func WithCache(size int) Option {
	return func(c *config) {
		c.cacheSize = size
	}
}

// WithMaxDepth rejects inputs nesting parentheses deeper than depth.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.limits.maxDepth = depth
	}
}

// WithMaxLength rejects inputs longer than n bytes.
func WithMaxLength(n int) Option {
	return func(c *config) {
		c.limits.maxLength = n
	}
}

// Parser parses FIQL strings with instrumentation. A Parser is safe for
// concurrent use.
type Parser struct {
	logger *slog.Logger
	obs    *observability.Config
	cache  *cache.Cache[*Expression]
	limits limits
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	obsOpts := []observability.Option{observability.WithLogger(logger)}
	if cfg.tracerProvider != nil {
		obsOpts = append(obsOpts, observability.WithTracerProvider(cfg.tracerProvider))
	}
	if cfg.meterProvider != nil {
		obsOpts = append(obsOpts, observability.WithMeterProvider(cfg.meterProvider))
	}
	if cfg.traceFilters {
		obsOpts = append(obsOpts, observability.WithFilterTracing())
	}
	obs := observability.NewConfig(obsOpts...)
	// Initialize never fails; it only picks real or no-op instruments.
	_ = obs.Initialize() //nolint:errcheck

	p := &Parser{
		logger: logger,
		obs:    obs,
		limits: cfg.limits,
	}
	if cfg.cacheSize > 0 {
		p.cache = cache.New[*Expression](cfg.cacheSize)
	}
	return p
}

// Parse parses input like the package level Parse. ctx carries tracing and
// Server-Timing state only; parsing is never cancelled.
func (p *Parser) Parse(ctx context.Context, input string) (*Expression, error) {
	start := time.Now()
	tracer := p.obs.Tracer()
	metrics := p.obs.Metrics()

	ctx, span := tracer.StartParse(ctx, input, p.obs.FilterTracingEnabled())
	defer span.End()
	timing := observability.StartServerTiming(ctx, "fiql")
	defer timing.Stop()

	logger := observability.LoggerWithTrace(ctx, p.logger)

	if p.cache != nil {
		cached, ok := p.cache.Get(input)
		metrics.RecordCacheLookup(ctx, ok)
		if ok {
			expr := cached.Clone()
			p.record(ctx, logger, span, expr, true, time.Since(start))
			return expr, nil
		}
	}

	expr, err := parseExpression(input, p.limits)
	if err != nil {
		tracer.RecordError(span, err)
		metrics.RecordParseError(ctx, errorKind(err))
		logger.Debug("FIQL parse failed",
			slog.Int("length", len(input)),
			slog.String(observability.LogFieldError, err.Error()),
		)
		return nil, err
	}

	if p.cache != nil {
		p.cache.Put(input, expr.Clone())
	}
	p.record(ctx, logger, span, expr, false, time.Since(start))
	return expr, nil
}

func (p *Parser) record(ctx context.Context, logger *slog.Logger, span trace.Span, expr *Expression, cacheHit bool, d time.Duration) {
	depth := expr.Depth()
	constraints := len(expr.Constraints())

	p.obs.Tracer().EndParse(span, depth, constraints, cacheHit)
	p.obs.Metrics().RecordParse(ctx, d, depth, cacheHit)
	logger.Debug("FIQL parsed",
		slog.Int(observability.LogFieldDepth, depth),
		slog.Int(observability.LogFieldConstraints, constraints),
		slog.Bool(observability.LogFieldCacheHit, cacheHit),
		slog.Float64(observability.LogFieldDuration, float64(d.Microseconds())/1000),
	)
}

func errorKind(err error) string {
	switch {
	case IsFormatError(err):
		return "format"
	case IsObjectError(err):
		return "object"
	default:
		return "unknown"
	}
}
