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

// Maaradji runs the trace-run KS detector with a strided sliding window.
func (s *Suite) Maaradji(ctx context.Context, args tasks.Args, prog tasks.Progress) ([]results.Row, error) {
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
	cps, err := detect.KSChangePoints(detect.RunLengths(tl.log), window, step, ksSignificance)
	if err != nil {
		if skippable(err) {
			return notApplicable(err)
		}
		return nil, err
	}
	prog.Step(1)

	rows := []results.Row{tl.row("Maaradji Runs", map[string]any{
		ColWindowSize: window,
		ColSWStepSize: step,
	}, cps, time.Since(start))}

	name := fmt.Sprintf("%s_WIN%d", tl.name, window)
	if err := s.intermediate("Maaradji", name, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
