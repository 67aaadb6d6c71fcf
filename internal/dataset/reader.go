// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/distribution"
	"github.com/tomtom215/calibrec/internal/recommend/tradeoff"
)

// Table names used in errors and metrics.
const (
	TablePreferences   = "preferences"
	TableCandidates    = "candidates"
	TableItems         = "items"
	TableDistributions = "distributions"
)

// column is one entry of a DESCRIBE result.
type column struct {
	name string
	typ  string
}

// table is a described input file.
type table struct {
	name    string
	source  string
	columns []column
	byName  map[string]column
}

// describe resolves path to a table function and reads its schema. Column
// names are matched case-insensitively.
func (db *DB) describe(ctx context.Context, name, path string) (*table, error) {
	source, err := sourceOf(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT column_name, column_type FROM (DESCRIBE SELECT * FROM "+source+")")
	if err != nil {
		return nil, fmt.Errorf("describe %s table %s: %w", name, path, err)
	}
	defer closeWithLog(rows, db.logger, "describe rows")

	t := &table{name: name, source: source, byName: make(map[string]column)}
	for rows.Next() {
		var c column
		if err := rows.Scan(&c.name, &c.typ); err != nil {
			return nil, fmt.Errorf("scan %s schema: %w", name, err)
		}
		t.columns = append(t.columns, c)
		t.byName[strings.ToUpper(c.name)] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s schema: %w", name, err)
	}
	return t, nil
}

func sourceOf(path string) (string, error) {
	format, err := FormatOf(path)
	if err != nil {
		return "", err
	}
	p := quoteLiteral(path)
	switch format {
	case FormatCSV:
		return "read_csv(" + p + ", delim = ',', header = true, auto_detect = true)", nil
	case FormatTSV:
		return "read_csv(" + p + ", delim = '\t', header = true, auto_detect = true)", nil
	case FormatParquet:
		return "read_parquet(" + p + ")", nil
	default:
		return "read_json_auto(" + p + ")", nil
	}
}

func (t *table) has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// ident returns the quoted source name of a column.
func (t *table) ident(name string) string {
	return quoteIdent(t.byName[name].name)
}

func (t *table) require(names ...string) error {
	for _, n := range names {
		if !t.has(n) {
			return &recommend.MissingColumnError{Table: t.name, Column: n}
		}
	}
	return nil
}

// epochExpr converts a TIMESTAMP column to epoch seconds whatever its type.
func (t *table) epochExpr() string {
	c := t.byName[recommend.ColumnTimestamp]
	typ := strings.ToUpper(c.typ)
	if strings.Contains(typ, "TIMESTAMP") || strings.Contains(typ, "DATE") {
		return "CAST(epoch(" + quoteIdent(c.name) + ") AS BIGINT)"
	}
	return "CAST(" + quoteIdent(c.name) + " AS BIGINT)"
}

// Preferences reads a preference table: USER_ID, ITEM_ID and
// TRANSACTION_VALUE, with optional TIMESTAMP and ORDER. File row order is
// preserved.
func (db *DB) Preferences(ctx context.Context, path string) (recommend.Frame, error) {
	start := time.Now()
	frame, err := db.interactions(ctx, TablePreferences, path, []string{recommend.ColumnTransactionValue})
	db.observe("read", TablePreferences, start, len(frame.Rows), err)
	return frame, err
}

// Candidates reads a candidate table. The score column is
// TRANSACTION_VALUE or, when absent, PREDICTED_VALUE.
func (db *DB) Candidates(ctx context.Context, path string) (recommend.Frame, error) {
	start := time.Now()
	frame, err := db.interactions(ctx, TableCandidates, path,
		[]string{recommend.ColumnTransactionValue, recommend.ColumnPredictedValue})
	db.observe("read", TableCandidates, start, len(frame.Rows), err)
	return frame, err
}

// interactions reads an interaction frame whose value column is the first
// of valueColumns present.
func (db *DB) interactions(ctx context.Context, name, path string, valueColumns []string) (recommend.Frame, error) {
	t, err := db.describe(ctx, name, path)
	if err != nil {
		return recommend.Frame{}, err
	}
	if err := t.require(recommend.ColumnUserID, recommend.ColumnItemID); err != nil {
		return recommend.Frame{}, err
	}

	valueColumn := ""
	for _, c := range valueColumns {
		if t.has(c) {
			valueColumn = c
			break
		}
	}
	if valueColumn == "" {
		return recommend.Frame{}, &recommend.MissingColumnError{Table: name, Column: strings.Join(valueColumns, " or ")}
	}

	frame := recommend.Frame{
		HasTimestamp: t.has(recommend.ColumnTimestamp),
		HasOrder:     t.has(recommend.ColumnOrder),
	}
	ts, order := "0", "0"
	if frame.HasTimestamp {
		ts = "COALESCE(" + t.epochExpr() + ", 0)"
	}
	if frame.HasOrder {
		order = "COALESCE(CAST(" + t.ident(recommend.ColumnOrder) + " AS BIGINT), 0)"
	}

	query := fmt.Sprintf(`
		SELECT
			CAST(%s AS BIGINT),
			CAST(%s AS BIGINT),
			COALESCE(CAST(%s AS DOUBLE), 0),
			%s,
			%s
		FROM %s`,
		t.ident(recommend.ColumnUserID), t.ident(recommend.ColumnItemID), t.ident(valueColumn),
		ts, order, t.source)

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return recommend.Frame{}, fmt.Errorf("read %s table %s: %w", name, path, err)
	}
	defer closeWithLog(rows, db.logger, name+" rows")

	for rows.Next() {
		var (
			row  recommend.Interaction
			rank int64
		)
		if err := rows.Scan(&row.UserID, &row.ItemID, &row.Value, &row.Timestamp, &rank); err != nil {
			return recommend.Frame{}, fmt.Errorf("scan %s row: %w", name, err)
		}
		row.Order = int(rank)
		frame.Rows = append(frame.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return recommend.Frame{}, fmt.Errorf("read %s rows: %w", name, err)
	}
	return frame, nil
}

// Items reads the item table: ITEM_ID plus optional GENRES and POPULARITY.
// NULL labels read as empty.
func (db *DB) Items(ctx context.Context, path string) (recommend.ItemTable, error) {
	start := time.Now()
	items, err := db.items(ctx, path)
	db.observe("read", TableItems, start, len(items.Rows), err)
	return items, err
}

func (db *DB) items(ctx context.Context, path string) (recommend.ItemTable, error) {
	t, err := db.describe(ctx, TableItems, path)
	if err != nil {
		return recommend.ItemTable{}, err
	}
	if err := t.require(recommend.ColumnItemID); err != nil {
		return recommend.ItemTable{}, err
	}

	items := recommend.ItemTable{
		HasGenres:     t.has(recommend.ColumnGenres),
		HasPopularity: t.has(recommend.ColumnPopularity),
	}
	genres, popularity := "''", "''"
	if items.HasGenres {
		genres = "COALESCE(CAST(" + t.ident(recommend.ColumnGenres) + " AS VARCHAR), '')"
	}
	if items.HasPopularity {
		popularity = "COALESCE(CAST(" + t.ident(recommend.ColumnPopularity) + " AS VARCHAR), '')"
	}

	query := fmt.Sprintf("SELECT CAST(%s AS BIGINT), %s, %s FROM %s",
		t.ident(recommend.ColumnItemID), genres, popularity, t.source)
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return recommend.ItemTable{}, fmt.Errorf("read items table %s: %w", path, err)
	}
	defer closeWithLog(rows, db.logger, "item rows")

	for rows.Next() {
		var rec recommend.ItemRecord
		if err := rows.Scan(&rec.ItemID, &rec.Genres, &rec.Popularity); err != nil {
			return recommend.ItemTable{}, fmt.Errorf("scan item row: %w", err)
		}
		items.Rows = append(items.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return recommend.ItemTable{}, fmt.Errorf("read item rows: %w", err)
	}
	return items, nil
}

// UserDistributions reads a precomputed USER_ID x class table. Every
// column other than USER_ID is a class label; NULL cells read as NaN and
// are zeroed when the table is handed to an engine.
func (db *DB) UserDistributions(ctx context.Context, path string) (tradeoff.Distributions, error) {
	start := time.Now()
	dists, err := db.userDistributions(ctx, path)
	db.observe("read", TableDistributions, start, len(dists), err)
	return dists, err
}

func (db *DB) userDistributions(ctx context.Context, path string) (tradeoff.Distributions, error) {
	t, err := db.describe(ctx, TableDistributions, path)
	if err != nil {
		return nil, err
	}
	if err := t.require(recommend.ColumnUserID); err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(t.columns))
	exprs := []string{"CAST(" + t.ident(recommend.ColumnUserID) + " AS BIGINT)"}
	for _, c := range t.columns {
		if strings.EqualFold(c.name, recommend.ColumnUserID) {
			continue
		}
		labels = append(labels, c.name)
		exprs = append(exprs, "CAST("+quoteIdent(c.name)+" AS DOUBLE)")
	}

	rows, err := db.conn.QueryContext(ctx, "SELECT "+strings.Join(exprs, ", ")+" FROM "+t.source)
	if err != nil {
		return nil, fmt.Errorf("read distributions table %s: %w", path, err)
	}
	defer closeWithLog(rows, db.logger, "distribution rows")

	dists := make(tradeoff.Distributions)
	values := make([]sql.NullFloat64, len(labels))
	dest := make([]any, len(labels)+1)
	for i := range values {
		dest[i+1] = &values[i]
	}
	for rows.Next() {
		var uid int
		dest[0] = &uid
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan distribution row: %w", err)
		}
		d := make(distribution.Distribution, len(labels))
		for i, label := range labels {
			if values[i].Valid {
				d[label] = values[i].Float64
			} else {
				d[label] = math.NaN()
			}
		}
		dists[uid] = d
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read distribution rows: %w", err)
	}
	return dists, nil
}
