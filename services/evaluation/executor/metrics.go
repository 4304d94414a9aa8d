// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	taskTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftbench_tasks_total",
		Help: "Completed tasks by outcome status",
	}, []string{"status"})

	taskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "driftbench_task_duration_seconds",
		Help:    "Task wall-clock duration",
		Buckets: []float64{0.1, 1, 10, 60, 300, 1800, 7200},
	})

	rowsProduced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "driftbench_result_rows_total",
		Help: "Result rows produced by successful tasks",
	})
)
