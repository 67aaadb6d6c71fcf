// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

/*
Package supervisor runs calibrec's long-lived work under a suture v4 tree.

# Overview

	RootSupervisor ("calibrec")
	├── JobsSupervisor ("jobs-layer")
	│   └── CalibrationService (one-shot or periodic)
	└── TelemetrySupervisor ("telemetry-layer")
	    └── HTTPServerService ("metrics-server", if metrics.enabled)

A crashing metrics server is restarted inside its own layer and never
restarts a calibration run in progress.

Supervisor events are logged through sutureslog, and every restart
increments calibrec_service_restarts_total.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	job := services.NewCalibrationService(runner, services.CalibrationServiceConfig{
	    Interval: cfg.Schedule.Interval,
	    Timeout:  cfg.Schedule.Timeout,
	}, logging.WithComponent("calibration"))
	tree.AddJobService(job)

	errCh := tree.ServeBackground(ctx)
	select {
	case err := <-job.Done():
	    cancel()
	    <-errCh
	    return err
	case err := <-errCh:
	    return err
	}
*/
package supervisor
