// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runners

import (
	"context"
	"fmt"
	"time"

	"github.com/AleutianAI/DriftBench/services/evaluation/detect"
	"github.com/AleutianAI/DriftBench/services/evaluation/drift"
	"github.com/AleutianAI/DriftBench/services/evaluation/results"
	"github.com/AleutianAI/DriftBench/services/evaluation/tasks"
)

// EarthMover runs the earth mover's distance detector with one fixed
// window size.
func (s *Suite) EarthMover(ctx context.Context, args tasks.Args, prog tasks.Progress) ([]results.Row, error) {
	window, err := args.Int("window_size")
	if err != nil {
		return nil, err
	}
	step, err := args.Int("step_size")
	if err != nil {
		return nil, err
	}

	tl, err := loadTaskLog(args)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prog.SetTotal(1)
	defer prog.Done()

	start := time.Now()
	cps, err := detect.EarthMoverChangePoints(tl.log, window, step)
	if err != nil {
		if skippable(err) {
			return notApplicable(err)
		}
		return nil, err
	}
	prog.Step(1)

	rows := []results.Row{tl.row("Earth Mover's Distance", map[string]any{
		ColWindowSize: window,
		ColSWStepSize: step,
	}, cps, time.Since(start))}

	name := fmt.Sprintf("%s_WIN%d", tl.name, window)
	if err := s.intermediate("Earthmover", name, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// EarthMoverMultiWindow runs the earth mover's distance detector once per
// configured window size and merges the per-window detections through the
// multi-window aggregator. Window sizes the log cannot fill contribute no
// candidates instead of failing the task; the task itself skips only when
// no window fits at all.
func (s *Suite) EarthMoverMultiWindow(ctx context.Context, args tasks.Args, prog tasks.Progress) ([]results.Row, error) {
	windows, err := args.Ints("window_sizes")
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: %q is empty", tasks.ErrBadArgType, "window_sizes")
	}
	alpha, err := args.Float("alpha")
	if err != nil {
		return nil, err
	}
	minSupport, err := args.Int("min_support_windows")
	if err != nil {
		return nil, err
	}
	step, err := args.Int("step_size")
	if err != nil {
		return nil, err
	}

	tl, err := loadTaskLog(args)
	if err != nil {
		return nil, err
	}

	prog.SetTotal(len(windows))
	defer prog.Done()

	start := time.Now()
	byWindow := make(map[int][]int, len(windows))
	minWindow, maxWindow := windows[0], windows[0]
	for _, window := range windows {
		if window < minWindow {
			minWindow = window
		}
		if window > maxWindow {
			maxWindow = window
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cps, err := detect.EarthMoverChangePoints(tl.log, window, step)
		if err != nil {
			if skippable(err) {
				prog.Step(1)
				continue
			}
			return nil, fmt.Errorf("window %d: %w", window, err)
		}
		byWindow[window] = cps
		prog.Step(1)
	}
	if len(byWindow) == 0 {
		return notApplicable(fmt.Errorf("no window size fits %d cases", tl.log.CaseCount()))
	}

	agg := drift.Aggregator{Alpha: alpha, MinSupportWindows: minSupport}
	cps := agg.Deduplicate(byWindow)

	rows := []results.Row{tl.row("Earth Mover's Distance Multi Window", map[string]any{
		ColWindowSizes:       windows,
		ColAlpha:             alpha,
		ColMinSupportWindows: minSupport,
		ColSWStepSize:        step,
	}, cps, time.Since(start))}

	name := fmt.Sprintf("%s_WIN%dTO%d", tl.name, minWindow, maxWindow)
	if err := s.intermediate("EarthmoverMultiWindow", name, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
