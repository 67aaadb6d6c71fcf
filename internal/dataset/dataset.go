// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/calibrec/internal/metrics"
)

// Config configures the embedded DuckDB instance.
type Config struct {
	// Path is the database file. Empty opens an in-memory database.
	Path string

	// MaxMemory is DuckDB's memory_limit, e.g. "2GB". Empty keeps the
	// DuckDB default.
	MaxMemory string

	// Threads is DuckDB's worker thread count. Zero keeps the default.
	Threads int
}

// Format is a table file format, chosen by extension.
type Format string

// Supported formats.
const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatParquet Format = "parquet"
	FormatJSON    Format = "json"
	FormatNDJSON  Format = "ndjson"
)

// FormatOf returns the format for path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".parquet":
		return FormatParquet, nil
	case ".json":
		return FormatJSON, nil
	case ".ndjson":
		return FormatNDJSON, nil
	default:
		return "", fmt.Errorf("unsupported table format %q", filepath.Ext(path))
	}
}

// DB reads input tables and writes output tables through DuckDB.
type DB struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// Open opens DuckDB and applies the configured settings.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(cfg.Path); cfg.Path != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:   conn,
		logger: logger.With().Str("component", "dataset").Logger(),
	}
	if err := db.configure(ctx, cfg); err != nil {
		closeQuietly(conn)
		return nil, err
	}
	return db, nil
}

func (db *DB) configure(ctx context.Context, cfg Config) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if cfg.Threads > 0 {
		if _, err := db.conn.ExecContext(ctx, fmt.Sprintf("SET threads = %d", cfg.Threads)); err != nil {
			return fmt.Errorf("failed to set threads: %w", err)
		}
	}
	if cfg.MaxMemory != "" {
		if _, err := db.conn.ExecContext(ctx, "SET memory_limit = "+quoteLiteral(cfg.MaxMemory)); err != nil {
			return fmt.Errorf("failed to set memory limit: %w", err)
		}
	}
	// Row order of an input file is significant for preferences.
	if _, err := db.conn.ExecContext(ctx, "SET preserve_insertion_order = true"); err != nil {
		return fmt.Errorf("failed to set insertion order: %w", err)
	}
	return nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying connection pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// observe records a dataset operation and logs its outcome.
func (db *DB) observe(operation, table string, start time.Time, rows int, err error) {
	elapsed := time.Since(start)
	metrics.RecordDatasetQuery(operation, table, elapsed, rows, err)
	if err != nil {
		return
	}
	db.logger.Debug().
		Str("operation", operation).
		Str("table", table).
		Int("rows", rows).
		Dur("elapsed", elapsed).
		Msg("dataset operation finished")
}

// closeQuietly closes a resource and ignores the error.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

func closeWithLog(closer io.Closer, logger zerolog.Logger, resource string) {
	if err := closer.Close(); err != nil {
		logger.Warn().Err(err).Str("type", resource).Msg("failed to close resource")
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
