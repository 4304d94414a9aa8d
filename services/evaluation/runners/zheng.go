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
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/DriftBench/services/evaluation/detect"
	"github.com/AleutianAI/DriftBench/services/evaluation/results"
	"github.com/AleutianAI/DriftBench/services/evaluation/tasks"
)

// ZhengDBSCAN runs the candidate-then-cluster detector. Candidate
// detection is independent of the clustering radius, so the candidates
// are computed once and clustered at every epsilon in the list
// (eps = mrid * modifier), one sibling row per epsilon. All rows share
// the one candidate-computation duration.
func (s *Suite) ZhengDBSCAN(ctx context.Context, args tasks.Args, prog tasks.Progress) ([]results.Row, error) {
	mrid, err := args.Int("mrid")
	if err != nil {
		return nil, err
	}
	modifiers, err := args.Floats("eps_modifiers")
	if err != nil {
		return nil, err
	}
	if len(modifiers) == 0 {
		return nil, fmt.Errorf("%w: %q is empty", tasks.ErrBadArgType, "eps_modifiers")
	}

	tl, err := loadTaskLog(args)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prog.SetTotal(1 + len(modifiers))
	defer prog.Done()

	start := time.Now()
	cands := detect.ZhengCandidates(tl.log, mrid)
	prog.Step(1)

	rows := make([]results.Row, 0, len(modifiers))
	for _, modifier := range modifiers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		eps := float64(mrid) * modifier
		cps := detect.ClusterCandidates(cands, eps)
		rows = append(rows, tl.row("Zheng DBSCAN", map[string]any{
			ColMRID:    mrid,
			ColEpsilon: eps,
		}, cps, time.Since(start)))
		prog.Step(1)
	}

	for _, row := range rows {
		eps := strings.ReplaceAll(strconv.FormatFloat(row.Params[ColEpsilon].(float64), 'g', -1, 64), ".", "_")
		name := fmt.Sprintf("%s_MRID%d_EPS%s", tl.name, mrid, eps)
		if err := s.intermediate("Zheng", name, []results.Row{row}); err != nil {
			return nil, err
		}
	}
	return rows, nil
}
