// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Command calibrate re-ranks recommendation candidates toward each user's
// historical class distribution.
//
// Usage:
//
//	calibrate run --items items.csv --preferences train.csv \
//	    --candidates candidates.parquet --output calibrated.csv
//	calibrate distributions --items items.csv --preferences train.csv \
//	    --output targets.parquet
//	calibrate codes --json
//	calibrate version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "calibrate:", err)
		os.Exit(1)
	}
}
