package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PostgresStore is a DocumentStore backed by a PostgreSQL table holding one
// JSONB document per row:
//
//	CREATE TABLE employees (
//	    seq BIGSERIAL,
//	    id  TEXT PRIMARY KEY,
//	    doc JSONB NOT NULL
//	);
//
// seq only exists to give Query a stable insertion order.
type PostgresStore struct {
	DB    *sql.DB
	table string
}

// NewPostgresStore create new instance for the given table.
func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{
		DB:    db,
		table: pgx.Identifier{table}.Sanitize(),
	}
}

// EnsureTable creates the backing table when it does not exist yet.
func (s *PostgresStore) EnsureTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
		seq BIGSERIAL,
		id  TEXT PRIMARY KEY,
		doc JSONB NOT NULL
	)`
	if _, err := s.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Get point-reads a document by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (Document, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.documentId", id))

	var raw []byte
	query := `SELECT doc FROM ` + s.table + ` WHERE id = $1`

	err := s.DB.QueryRowContext(ctx, query, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return parseDocument(raw)
}

// Query returns every document matching filter, oldest first.
func (s *PostgresStore) Query(ctx context.Context, filter Filter) ([]Document, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, err
	}
	query := `SELECT doc FROM ` + s.table + where + ` ORDER BY seq`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		doc, err := parseDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Create inserts a new document. The id attribute becomes the row key.
func (s *PostgresStore) Create(ctx context.Context, doc Document) error {
	id := doc.ID()
	if id == "" {
		return fmt.Errorf("document has no %q attribute", IDField)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.documentId", id))

	body, err := encodeJSONValue(doc)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + s.table + ` (id, doc) VALUES ($1, $2::jsonb)`
	_, err = s.DB.ExecContext(ctx, query, id, body)
	return err
}

// Replace overwrites the document stored under id.
func (s *PostgresStore) Replace(ctx context.Context, id string, doc Document) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.documentId", id))

	body, err := encodeJSONValue(doc)
	if err != nil {
		return err
	}

	query := `UPDATE ` + s.table + ` SET doc = $2::jsonb WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, id, body)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// Delete removes the document stored under id.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.documentId", id))

	query := `DELETE FROM ` + s.table + ` WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// buildWhere compiles filter into a WHERE clause with positional parameters.
// Attribute names are parameters too, so nothing user supplied reaches the
// SQL text.
func buildWhere(filter Filter) (string, []any, error) {
	if len(filter.Conditions) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(filter.Conditions))
	args := make([]any, 0, 2*len(filter.Conditions))
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, c := range filter.Conditions {
		switch c.Op {
		case OpEqual:
			value, err := encodeJSONValue(c.Value)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, fmt.Sprintf("doc -> %s::text = %s::jsonb", next(c.Field), next(value)))
		case OpContains:
			value, err := c.stringValue()
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, fmt.Sprintf("strpos(doc ->> %s::text, %s::text) > 0", next(c.Field), next(value)))
		case OpPrefix:
			value, err := c.stringValue()
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, fmt.Sprintf("starts_with(doc ->> %s::text, %s::text)", next(c.Field), next(value)))
		default:
			return "", nil, fmt.Errorf("unsupported filter operator %s", c.Op)
		}
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}
