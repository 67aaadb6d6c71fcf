// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/tradeoff"
)

// Output table names used in metrics and staging.
const (
	TableRecommendations = "recommendations"
	stagingPrefix        = "calibrec_out_"
)

// recommendationRow is the exported shape of one placed item. Column names
// match the input conventions so an output can feed a later run.
type recommendationRow struct {
	ItemID int     `json:"ITEM_ID"`
	Order  int     `json:"ORDER"`
	Value  float64 `json:"TRANSACTION_VALUE"`
	UserID int     `json:"USER_ID"`
}

// WriteRecommendations writes recs in input order with columns ITEM_ID,
// ORDER, TRANSACTION_VALUE and USER_ID.
func (db *DB) WriteRecommendations(ctx context.Context, path string, recs []recommend.Recommendation) error {
	start := time.Now()
	err := db.writeRecommendations(ctx, path, recs)
	db.observe("write", TableRecommendations, start, len(recs), err)
	return err
}

func (db *DB) writeRecommendations(ctx context.Context, path string, recs []recommend.Recommendation) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	rows := make([]recommendationRow, len(recs))
	for i, r := range recs {
		rows[i] = recommendationRow{ItemID: r.ItemID, Order: r.Order, Value: r.Value, UserID: r.UserID}
	}

	switch format {
	case FormatJSON, FormatNDJSON:
		records := make([]any, len(rows))
		for i := range rows {
			records[i] = rows[i]
		}
		return writeJSON(path, format, records)
	}

	columns := []stagedColumn{
		{recommend.ColumnItemID, "BIGINT"},
		{recommend.ColumnOrder, "INTEGER"},
		{recommend.ColumnTransactionValue, "DOUBLE"},
		{recommend.ColumnUserID, "BIGINT"},
	}
	return db.copyOut(ctx, path, format, TableRecommendations, columns, len(rows), func(i int) []any {
		r := rows[i]
		return []any{r.ItemID, r.Order, r.Value, r.UserID}
	})
}

// WriteDistributions writes one row per user, ordered by user id, with a
// USER_ID column followed by one column per class label. Labels a user
// lacks are written as 0.
func (db *DB) WriteDistributions(ctx context.Context, path string, dists tradeoff.Distributions) error {
	start := time.Now()
	err := db.writeDistributions(ctx, path, dists)
	db.observe("write", TableDistributions, start, len(dists), err)
	return err
}

func (db *DB) writeDistributions(ctx context.Context, path string, dists tradeoff.Distributions) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	users := dists.Users()
	labels := dists.Labels()

	switch format {
	case FormatJSON, FormatNDJSON:
		records := make([]any, len(users))
		for i, uid := range users {
			rec := make(map[string]any, len(labels)+1)
			rec[recommend.ColumnUserID] = uid
			for _, label := range labels {
				rec[label] = dists[uid][label]
			}
			records[i] = rec
		}
		return writeJSON(path, format, records)
	}

	columns := make([]stagedColumn, 0, len(labels)+1)
	columns = append(columns, stagedColumn{recommend.ColumnUserID, "BIGINT"})
	for _, label := range labels {
		columns = append(columns, stagedColumn{label, "DOUBLE"})
	}
	return db.copyOut(ctx, path, format, TableDistributions, columns, len(users), func(i int) []any {
		uid := users[i]
		values := make([]any, 0, len(labels)+1)
		values = append(values, uid)
		for _, label := range labels {
			values = append(values, dists[uid][label])
		}
		return values
	})
}

type stagedColumn struct {
	name string
	typ  string
}

// copyOut stages n rows in a temporary table on a dedicated connection and
// exports it with COPY TO.
func (db *DB) copyOut(ctx context.Context, path string, format Format, name string, columns []stagedColumn, n int, row func(i int) []any) error {
	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer closeWithLog(conn, db.logger, "export connection")

	staging := quoteIdent(stagingPrefix + name)
	defs := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c.name) + " " + c.typ
		marks[i] = "?"
	}

	if _, err := conn.ExecContext(ctx,
		"CREATE OR REPLACE TEMP TABLE "+staging+" ("+strings.Join(defs, ", ")+")"); err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), "DROP TABLE IF EXISTS "+staging); err != nil {
			db.logger.Warn().Err(err).Msg("failed to drop staging table")
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin staging transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+staging+" VALUES ("+strings.Join(marks, ", ")+")")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare staging insert: %w", err)
	}
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			closeQuietly(stmt)
			_ = tx.Rollback()
			return fmt.Errorf("stage row %d: %w", i, err)
		}
	}
	closeQuietly(stmt)
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit staging rows: %w", err)
	}

	copyQuery := fmt.Sprintf("COPY %s TO %s (%s)", staging, quoteLiteral(path), copyOptions(format))
	if _, err := conn.ExecContext(ctx, copyQuery); err != nil {
		return fmt.Errorf("export %s to %s: %w", name, path, err)
	}
	return nil
}

func copyOptions(format Format) string {
	switch format {
	case FormatTSV:
		return "FORMAT CSV, HEADER true, DELIMITER '\t'"
	case FormatParquet:
		return "FORMAT PARQUET, COMPRESSION 'ZSTD'"
	default:
		return "FORMAT CSV, HEADER true"
	}
}

// writeJSON writes records as one JSON array, or one object per line for
// NDJSON.
func writeJSON(path string, format Format, records []any) (err error) {
	f, err := os.Create(path) //nolint:gosec // output path comes from trusted configuration
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := encodeJSON(w, format, records); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func encodeJSON(w io.Writer, format Format, records []any) error {
	enc := json.NewEncoder(w)
	if format == FormatNDJSON {
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.Encode(records)
}

// EncodeRecommendations writes recs to w as NDJSON with the same field
// names as WriteRecommendations.
func EncodeRecommendations(w io.Writer, recs []recommend.Recommendation) error {
	records := make([]any, len(recs))
	for i, r := range recs {
		records[i] = recommendationRow{ItemID: r.ItemID, Order: r.Order, Value: r.Value, UserID: r.UserID}
	}
	return encodeJSON(w, FormatNDJSON, records)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return nil
}
