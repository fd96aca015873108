// Command fiqlserver is a development server for trying FIQL filters against
// a small product table.
//
//	GET  /parse?q=name==foo;price=lt=10   canonical and value forms of a filter
//	GET  /products?filter=category==Kitchen  products matching a filter
//	POST /reseed                          reset the sample data
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nlstn/go-fiql"
	"github.com/nlstn/go-fiql/internal/observability"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags
	dbType := flag.String("db", "sqlite", "Database type: sqlite or postgres")
	dbDSN := flag.String("dsn", "", "Database DSN (connection string). For postgres, use postgresql://... format. For sqlite, use file path or :memory:")
	port := flag.String("port", "9092", "Port to listen on")
	serverTiming := flag.Bool("server-timing", true, "Add Server-Timing headers to responses")
	cacheSize := flag.Int("cache", 256, "Number of parsed filters to cache (0 disables the cache)")
	maxDepth := flag.Int("max-depth", 16, "Maximum parenthesis nesting accepted in filters")
	maxLength := flag.Int("max-length", 4096, "Maximum filter length in bytes")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	db, err := openDatabase(*dbType, *dbDSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := observability.RegisterServerTimingCallbacks(db); err != nil {
		log.Fatal("Failed to register database timing callbacks:", err)
	}

	if err := seedDatabase(db); err != nil {
		log.Fatal("Failed to seed database:", err)
	}

	obsOpts := []observability.Option{
		observability.WithServiceName("fiqlserver"),
		observability.WithServiceVersion(version),
		observability.WithLogger(logger),
	}
	if *serverTiming {
		obsOpts = append(obsOpts, observability.WithServerTiming())
	}
	obs := observability.NewConfig(obsOpts...)
	if err := obs.Initialize(); err != nil {
		log.Fatal("Failed to initialize observability:", err)
	}

	parser := fiql.NewParser(
		fiql.WithLogger(logger),
		fiql.WithCache(*cacheSize),
		fiql.WithMaxDepth(*maxDepth),
		fiql.WithMaxLength(*maxLength),
	)

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           newServer(db, parser, obs, logger).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Println("🚀 FIQL development server starting...")
	fmt.Println("Endpoints:")
	fmt.Printf("  Parse:     http://localhost:%s/parse?q=name==foo*;price=lt=100\n", *port)
	fmt.Printf("  Products:  http://localhost:%s/products?filter=category==Electronics\n", *port)
	fmt.Printf("  Reseed:    POST http://localhost:%s/reseed\n", *port)
	fmt.Println()

	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("Server failed:", err)
	}
}

// openDatabase connects to the configured database.
func openDatabase(dbType, dbDSN string) (*gorm.DB, error) {
	switch dbType {
	case "sqlite":
		dsn := ":memory:"
		if dbDSN != "" {
			dsn = dbDSN
		}

		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
		}
		if dsn == ":memory:" {
			// Every connection to :memory: opens a separate database.
			sqlDB, err := db.DB()
			if err != nil {
				return nil, fmt.Errorf("failed to access SQLite connection pool: %w", err)
			}
			sqlDB.SetMaxOpenConns(1)
		}
		fmt.Println("📦 Using SQLite database:", dsn)
		return db, nil

	case "postgres":
		dsn := dbDSN
		if dsn == "" {
			// Check for environment variable as fallback
			dsn = os.Getenv("DATABASE_URL")
			if dsn == "" {
				return nil, fmt.Errorf("PostgreSQL DSN required. Use -dsn flag or set DATABASE_URL environment variable")
			}
		}

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
		}
		fmt.Println("🐘 Using PostgreSQL database")
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s. Use 'sqlite' or 'postgres'", dbType)
	}
}
