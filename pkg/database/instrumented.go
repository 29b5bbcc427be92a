package database

import (
	"context"
	"database/sql"
	"fmt"

	"employee.registry/internal/config"
	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// PostgresDSN builds the connection URL from the DB_* settings.
func PostgresDSN(cfg config.Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

// NewInstrumentedConnection creates a database connection with OpenTelemetry instrumentation.
func NewInstrumentedConnection(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	// otelsql.Open wraps the driver to intercept queries and create spans
	db, err := otelsql.Open("pgx", PostgresDSN(cfg),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to postgres: %w", err)
	}

	return db, nil
}
