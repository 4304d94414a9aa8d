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
	"github.com/AleutianAI/DriftBench/services/evaluation/results"
	"github.com/AleutianAI/DriftBench/services/evaluation/tasks"
)

// MartjushevADWIN runs the adaptive-window KS detectors. The window
// bounds arrive as the two-element min_max_window_pair list; a log that
// cannot even fill the minimum window skips the whole task with
// NOT_APPLICABLE before any variant runs.
func (s *Suite) MartjushevADWIN(ctx context.Context, args tasks.Args, prog tasks.Progress) ([]results.Row, error) {
	minWindow, maxWindow, err := args.IntPair("min_max_window_pair")
	if err != nil {
		return nil, err
	}
	pvalue, err := args.Float("pvalue")
	if err != nil {
		return nil, err
	}
	step, err := args.Int("step_size")
	if err != nil {
		return nil, err
	}
	doJ, err := args.Bool("do_j", true)
	if err != nil {
		return nil, err
	}
	doWC, err := args.Bool("do_wc", true)
	if err != nil {
		return nil, err
	}

	tl, err := loadTaskLog(args)
	if err != nil {
		return nil, err
	}
	if tl.log.CaseCount() <= minWindow {
		return notApplicable(fmt.Errorf("%d cases do not fill the initial %d-case windows", tl.log.CaseCount(), minWindow))
	}

	variants := []struct {
		name    string
		enabled bool
		signal  func() []float64
	}{
		{"Martjushev ADWIN J", doJ, func() []float64 { return detect.JMeasure(tl.log) }},
		{"Martjushev ADWIN WC", doWC, func() []float64 { return detect.WindowCount(tl.log) }},
	}

	total := 0
	for _, v := range variants {
		if v.enabled {
			total++
		}
	}
	prog.SetTotal(total)
	defer prog.Done()

	rows := []results.Row{}
	for _, v := range variants {
		if !v.enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		cps, err := detect.AdaptiveKSChangePoints(v.signal(), minWindow, maxWindow, step, pvalue)
		if err != nil {
			if skippable(err) {
				return notApplicable(err)
			}
			return nil, fmt.Errorf("%s: %w", v.name, err)
		}

		rows = append(rows, tl.row(v.name, map[string]any{
			ColPValue:            pvalue,
			ColMinAdaptiveWindow: minWindow,
			ColMaxAdaptiveWindow: maxWindow,
			ColADWINStepSize:     step,
		}, cps, time.Since(start)))
		prog.Step(1)
	}

	name := fmt.Sprintf("%s_MINW%d_MAXW%d", tl.name, minWindow, maxWindow)
	if err := s.intermediate("Martjushev ADWIN", name, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
