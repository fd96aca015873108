package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	gormSpanKey             = "fiql:gorm:span"
	gormStartTimeKey        = "fiql:gorm:start"
	gormTimingStartKey      = "fiql:gorm:timing_start"
	gormTimingCallbacksName = "fiql_server_timing"
)

// registerAround registers before and after hooks around the built-in GORM
// callbacks used by filtered listings (query, row, raw) and seeding (create).
func registerAround(db *gorm.DB, prefix string, before func(op string) func(*gorm.DB), after func(op string) func(*gorm.DB)) error {
	cb := db.Callback()

	// Query callbacks
	if err := cb.Query().Before("gorm:query").Register(prefix+":before_query", before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register(prefix+":after_query", after("SELECT")); err != nil {
		return err
	}

	// Row callbacks
	if err := cb.Row().Before("gorm:row").Register(prefix+":before_row", before("ROW")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register(prefix+":after_row", after("ROW")); err != nil {
		return err
	}

	// Raw callbacks
	if err := cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before("RAW")); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register(prefix+":after_raw", after("RAW")); err != nil {
		return err
	}

	// Create callbacks
	if err := cb.Create().Before("gorm:create").Register(prefix+":before_create", before("INSERT")); err != nil {
		return err
	}
	return cb.Create().After("gorm:create").Register(prefix+":after_create", after("INSERT"))
}

// RegisterGORMCallbacks registers GORM callbacks for database query tracing.
// This should be called after GORM is initialized and observability is configured.
func RegisterGORMCallbacks(db *gorm.DB, cfg *Config) error {
	if cfg == nil || cfg.TracerProvider == nil || !cfg.EnableDetailedDBTracing {
		return nil
	}

	tracer := cfg.Tracer()
	return registerAround(db, "fiql",
		func(operation string) func(*gorm.DB) {
			return func(db *gorm.DB) { startSpan(db, tracer, operation) }
		},
		func(operation string) func(*gorm.DB) {
			return func(db *gorm.DB) { endSpan(db, tracer, cfg, operation) }
		},
	)
}

// RegisterServerTimingCallbacks registers GORM callbacks for server timing metrics.
// These callbacks add the duration of each database operation to the request's
// accumulator, which is reported as the "db" metric in Server-Timing headers.
// This is independent of the tracing callbacks and can be enabled without OpenTelemetry.
func RegisterServerTimingCallbacks(db *gorm.DB) error {
	return registerAround(db, gormTimingCallbacksName,
		func(string) func(*gorm.DB) { return beforeTiming },
		func(string) func(*gorm.DB) { return afterTiming },
	)
}

// beforeTiming records the start time of a database operation for server timing.
func beforeTiming(db *gorm.DB) {
	db.InstanceSet(gormTimingStartKey, time.Now())
}

// afterTiming calculates the duration of a database operation and adds it to the accumulator.
func afterTiming(db *gorm.DB) {
	startTimeVal, ok := db.InstanceGet(gormTimingStartKey)
	if !ok {
		return
	}

	startTime, ok := startTimeVal.(time.Time)
	if !ok {
		return
	}

	if db.Statement != nil && db.Statement.Context != nil {
		AddDBTime(db.Statement.Context, time.Since(startTime))
	}
}

func startSpan(db *gorm.DB, tracer *Tracer, operation string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := tracer.StartDBQuery(ctx, operation,
		attribute.String("db.system", db.Dialector.Name()),
	)

	db.Statement.Context = ctx
	db.InstanceSet(gormSpanKey, span)
	db.InstanceSet(gormStartTimeKey, time.Now())
}

func endSpan(db *gorm.DB, tracer *Tracer, cfg *Config, operation string) {
	spanVal, ok := db.InstanceGet(gormSpanKey)
	if !ok {
		return
	}

	span, ok := spanVal.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if db.Statement != nil {
		if tableName := db.Statement.Table; tableName != "" {
			span.SetAttributes(attribute.String("db.sql.table", tableName))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	}

	if db.Error != nil {
		tracer.RecordError(span, db.Error)
	}

	if startTimeVal, ok := db.InstanceGet(gormStartTimeKey); ok {
		if startTime, ok := startTimeVal.(time.Time); ok {
			cfg.Metrics().RecordDBQuery(db.Statement.Context, operation, time.Since(startTime))
		}
	}
}
