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

// Bose runs the J-measure and window-count KS detectors on one log with
// one fixed sliding-window size. The two variants share the loaded log
// and report as sibling rows "Bose J" and "Bose WC"; either can be
// disabled with the do_j / do_wc meta-parameters.
func (s *Suite) Bose(ctx context.Context, args tasks.Args, prog tasks.Progress) ([]results.Row, error) {
	window, err := args.Int("window_size")
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

	variants := []struct {
		name    string
		enabled bool
		signal  func() []float64
	}{
		{"Bose J", doJ, func() []float64 { return detect.JMeasure(tl.log) }},
		{"Bose WC", doWC, func() []float64 { return detect.WindowCount(tl.log) }},
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
		cps, err := detect.KSChangePoints(v.signal(), window, step, ksSignificance)
		if err != nil {
			if skippable(err) {
				return notApplicable(err)
			}
			return nil, fmt.Errorf("%s: %w", v.name, err)
		}

		rows = append(rows, tl.row(v.name, map[string]any{
			ColWindowSize: window,
			ColSWStepSize: step,
		}, cps, time.Since(start)))
		prog.Step(1)
	}

	name := fmt.Sprintf("%s_WIN%d", tl.name, window)
	if err := s.intermediate("Bose", name, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
