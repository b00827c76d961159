// Package engine executes statements against DuckDB after passing them
// through the rewriter.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/domain"
)

// DriverName is the database/sql driver used by Open.
const DriverName = "duckdb"

// Rewriter turns a statement into DuckDB-compatible SQL.
type Rewriter interface {
	Rewrite(sql string) domain.TransformResult
}

// Engine wraps a DuckDB connection. Every statement is rewritten before it
// reaches the driver; arguments pass through untouched.
type Engine struct {
	db       *sql.DB
	rewriter Rewriter
	logger   *slog.Logger
}

// New creates an Engine over an open connection. logger defaults to slog.Default().
func New(db *sql.DB, rewriter Rewriter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{db: db, rewriter: rewriter, logger: logger}
}

// Open opens the DuckDB database at path (empty for in-memory) and verifies
// the connection.
func Open(ctx context.Context, path string, rewriter Rewriter, logger *slog.Logger) (*Engine, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return New(db, rewriter, logger), nil
}

// DB returns the underlying connection.
func (e *Engine) DB() *sql.DB { return e.db }

// Close closes the underlying connection.
func (e *Engine) Close() error { return e.db.Close() }

// Rewrite returns the SQL that would be sent for query.
func (e *Engine) Rewrite(query string) domain.TransformResult {
	res := e.rewriter.Rewrite(query)
	e.logger.Debug("query audit", "transformed", res.Transformed, "original", query, "sql", res.SQL)
	return res
}

// QueryContext rewrites and runs a query that returns rows.
func (e *Engine) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := e.db.QueryContext(ctx, e.Rewrite(query).SQL, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	return rows, nil
}

// ExecContext rewrites and runs a statement that returns no rows.
func (e *Engine) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := e.db.ExecContext(ctx, e.Rewrite(query).SQL, args...)
	if err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}
	return res, nil
}

// QueryRowContext rewrites and runs a query expected to return at most one
// row. Errors are deferred to Scan, as with sql.DB.
func (e *Engine) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return e.db.QueryRowContext(ctx, e.Rewrite(query).SQL, args...)
}

// QueryResult is a fully read result set.
type QueryResult struct {
	SQL      string          `json:"sql" yaml:"sql"`
	Columns  []string        `json:"columns" yaml:"columns"`
	Rows     [][]interface{} `json:"rows" yaml:"rows"`
	RowCount int             `json:"row_count" yaml:"row_count"`
	Duration time.Duration   `json:"duration" yaml:"duration"`
}

// Query rewrites query, runs it and reads every row.
func (e *Engine) Query(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	start := time.Now()
	rewritten := e.Rewrite(query).SQL
	rows, err := e.db.QueryContext(ctx, rewritten, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	result, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	result.SQL = rewritten
	result.Duration = time.Since(start)
	return result, nil
}

func scanRows(rows *sql.Rows) (*QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var resultRows [][]interface{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]interface{}, len(vals))
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			} else {
				row[i] = v
			}
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueryResult{
		Columns:  cols,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}
