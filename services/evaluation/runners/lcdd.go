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

// LCDD runs the local-completeness direct-follows detector. The
// (complete, detection) window sizes arrive as the two-element
// window_pairs list.
func (s *Suite) LCDD(ctx context.Context, args tasks.Args, prog tasks.Progress) ([]results.Row, error) {
	completeWindow, detectionWindow, err := args.IntPair("window_pairs")
	if err != nil {
		return nil, err
	}
	stablePeriod, err := args.Int("stable_period")
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
	cps, err := detect.LCDDChangePoints(tl.log, completeWindow, detectionWindow, stablePeriod)
	if err != nil {
		if skippable(err) {
			return notApplicable(err)
		}
		return nil, err
	}
	prog.Step(1)

	rows := []results.Row{tl.row("LCDD", map[string]any{
		ColCompleteWindowSize:  completeWindow,
		ColDetectionWindowSize: detectionWindow,
		ColStablePeriod:        stablePeriod,
	}, cps, time.Since(start))}

	name := fmt.Sprintf("%s_CW%d_DW%d_SP%d", tl.name, completeWindow, detectionWindow, stablePeriod)
	if err := s.intermediate("LCDD", name, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
