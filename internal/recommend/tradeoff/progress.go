// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package tradeoff

import (
	"time"

	"github.com/rs/zerolog"
)

// Progress receives per-user and per-batch notifications during Fit.
// UserDone is called from worker goroutines and must be safe for
// concurrent use.
type Progress interface {
	// UserDone reports a finished user with the length of its list.
	UserDone(userID, placed int, elapsed time.Duration)

	// BatchDone reports the number of users finished so far.
	BatchDone(done, total int)
}

// LogProgress logs batch completion.
type LogProgress struct {
	Logger zerolog.Logger
}

// UserDone logs at trace level.
func (p LogProgress) UserDone(userID, placed int, elapsed time.Duration) {
	p.Logger.Trace().
		Int("user_id", userID).
		Int("placed", placed).
		Dur("elapsed", elapsed).
		Msg("user calibrated")
}

// BatchDone logs at info level.
func (p LogProgress) BatchDone(done, total int) {
	p.Logger.Info().
		Int("done", done).
		Int("total", total).
		Int("percent", percent(done, total)).
		Msg("calibration progress")
}

func percent(done, total int) int {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

// MultiProgress fans notifications out to several receivers.
func MultiProgress(ps ...Progress) Progress {
	return multiProgress(ps)
}

type multiProgress []Progress

func (m multiProgress) UserDone(userID, placed int, elapsed time.Duration) {
	for _, p := range m {
		p.UserDone(userID, placed, elapsed)
	}
}

func (m multiProgress) BatchDone(done, total int) {
	for _, p := range m {
		p.BatchDone(done, total)
	}
}

type nopProgress struct{}

func (nopProgress) UserDone(int, int, time.Duration) {}
func (nopProgress) BatchDone(int, int)               {}
