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
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/DriftBench/services/evaluation/results"
	"github.com/AleutianAI/DriftBench/services/evaluation/tasks"
)

func makeTasks(function string, n int) []tasks.Task {
	list := make([]tasks.Task, n)
	for i := range list {
		list[i] = tasks.Task{Function: function, Args: tasks.Args{"idx": i}, Position: i}
	}
	return list
}

func TestStreamDeliversAllOutcomes(t *testing.T) {
	reg := tasks.NewRegistry()
	reg.MustRegister("ok", func(_ context.Context, args tasks.Args, _ tasks.Progress) ([]results.Row, error) {
		idx, err := args.Int("idx")
		require.NoError(t, err)
		return []results.Row{{Algorithm: fmt.Sprintf("algo-%d", idx)}}, nil
	})

	p := &Pool{Workers: 4, Registry: reg}
	seen := map[int]bool{}
	for oc := range p.Stream(context.Background(), makeTasks("ok", 10)) {
		assert.Equal(t, StatusSuccess, oc.Status)
		require.Len(t, oc.Rows, 1)
		seen[oc.Task.Position] = true
	}
	assert.Len(t, seen, 10)
}

func TestSkippedTasksContributeNoRows(t *testing.T) {
	reg := tasks.NewRegistry()
	reg.MustRegister("skip", func(context.Context, tasks.Args, tasks.Progress) ([]results.Row, error) {
		return nil, fmt.Errorf("%w: log too short", tasks.ErrNotApplicable)
	})

	p := &Pool{Workers: 2, Registry: reg}
	outcomes, err := p.Run(context.Background(), makeTasks("skip", 5))
	require.NoError(t, err)
	require.Len(t, outcomes, 5)
	for _, oc := range outcomes {
		assert.Equal(t, StatusSkipped, oc.Status)
		assert.Empty(t, oc.Rows)
	}
}

func TestFaultAbortsDispatch(t *testing.T) {
	var calls atomic.Int32
	reg := tasks.NewRegistry()
	reg.MustRegister("boom", func(context.Context, tasks.Args, tasks.Progress) ([]results.Row, error) {
		calls.Add(1)
		return nil, fmt.Errorf("storage exploded")
	})

	p := &Pool{Workers: 1, Registry: reg}
	outcomes, err := p.Run(context.Background(), makeTasks("boom", 50))
	require.ErrorIs(t, err, ErrTaskFaulted)

	// One worker, fail-fast: only the first task ever ran.
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusFaulted, outcomes[0].Status)
	assert.EqualValues(t, 1, calls.Load())
}

func TestPanicBecomesFault(t *testing.T) {
	reg := tasks.NewRegistry()
	reg.MustRegister("panic", func(context.Context, tasks.Args, tasks.Progress) ([]results.Row, error) {
		panic("index out of range")
	})

	p := &Pool{Workers: 1, Registry: reg}
	outcomes, err := p.Run(context.Background(), makeTasks("panic", 1))
	require.ErrorIs(t, err, ErrTaskFaulted)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusFaulted, outcomes[0].Status)
	assert.Contains(t, outcomes[0].Err.Error(), "task panic")
	assert.Contains(t, outcomes[0].Err.Error(), "index out of range")
}

func TestUnknownFunctionFaults(t *testing.T) {
	p := &Pool{Workers: 1, Registry: tasks.NewRegistry()}
	outcomes, err := p.Run(context.Background(), makeTasks("missing", 1))
	require.ErrorIs(t, err, ErrTaskFaulted)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusFaulted, outcomes[0].Status)
	assert.ErrorIs(t, outcomes[0].Err, tasks.ErrUnknownFunction)
}

func TestSiblingRowsPropagate(t *testing.T) {
	reg := tasks.NewRegistry()
	reg.MustRegister("twins", func(context.Context, tasks.Args, tasks.Progress) ([]results.Row, error) {
		return []results.Row{{Algorithm: "J"}, {Algorithm: "WC"}}, nil
	})

	p := &Pool{Workers: 1, Registry: reg}
	outcomes, err := p.Run(context.Background(), makeTasks("twins", 1))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Len(t, outcomes[0].Rows, 2)
}

func TestProgressFactoryReceivesTask(t *testing.T) {
	reg := tasks.NewRegistry()
	reg.MustRegister("ok", func(_ context.Context, _ tasks.Args, prog tasks.Progress) ([]results.Row, error) {
		prog.SetTotal(1)
		prog.Step(1)
		prog.Done()
		return nil, nil
	})

	var built atomic.Int32
	p := &Pool{
		Workers:  2,
		Registry: reg,
		Progress: func(tasks.Task) tasks.Progress {
			built.Add(1)
			return tasks.NopProgress{}
		},
	}
	_, err := p.Run(context.Background(), makeTasks("ok", 4))
	require.NoError(t, err)
	assert.EqualValues(t, 4, built.Load())
}

func TestDefaultWorkersFloor(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultWorkers(), 1)
}
