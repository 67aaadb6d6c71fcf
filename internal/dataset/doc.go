// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

/*
Package dataset reads calibration inputs and writes calibration outputs
through an embedded DuckDB.

Files are never imported into persistent tables. Every read is a single
SELECT over a DuckDB table function chosen by extension:

	.csv       read_csv(path, delim = ',', header = true, auto_detect = true)
	.tsv       read_csv(path, delim = '\t', header = true, auto_detect = true)
	.parquet   read_parquet(path)
	.json      read_json_auto(path)
	.ndjson    read_json_auto(path)

Column presence is detected with DESCRIBE before the read, and column names
match case-insensitively. A missing required column is reported as a
*recommend.MissingColumnError.

Outputs in CSV, TSV and Parquet are staged in a temporary table and
exported with COPY TO. JSON and NDJSON outputs are encoded directly.

Usage:

	db, err := dataset.Open(ctx, dataset.Config{MaxMemory: "2GB"}, logger)
	if err != nil {
	    return err
	}
	defer db.Close()

	prefs, err := db.Preferences(ctx, "train.parquet")
	...
	err = db.WriteRecommendations(ctx, "calibrated.csv", recs)
*/
package dataset
