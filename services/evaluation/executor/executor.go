// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package executor runs benchmark tasks on a bounded worker pool and
// delivers outcomes as they complete. A NOT_APPLICABLE task becomes a
// Skipped outcome; any other task error (including a recovered panic)
// becomes a Faulted outcome and aborts dispatch of the remaining tasks.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/DriftBench/services/evaluation/results"
	"github.com/AleutianAI/DriftBench/services/evaluation/tasks"
)

// ErrTaskFaulted is returned by Run when any task faulted. The run's
// partial outcomes remain valid; callers flush them before exiting.
var ErrTaskFaulted = errors.New("task faulted")

// Status classifies a completed task.
type Status int

const (
	// StatusSuccess means the task produced its result rows.
	StatusSuccess Status = iota

	// StatusSkipped means the task reported NOT_APPLICABLE for its
	// dataset. Skips contribute no rows and are not failures.
	StatusSkipped

	// StatusFaulted means the task returned an unexpected error or
	// panicked. A fault aborts dispatch of the remaining tasks.
	StatusFaulted
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Outcome is the completion record of one task.
type Outcome struct {
	Task     tasks.Task
	Status   Status
	Rows     []results.Row
	Err      error
	Duration time.Duration
}

// Pool executes tasks on Workers goroutines.
//
// Thread Safety: a Pool is stateless between calls; Stream and Run may be
// called concurrently with distinct task lists.
type Pool struct {
	// Workers is the goroutine count. Non-positive means DefaultWorkers.
	Workers int

	// Registry resolves task function names. Required.
	Registry *tasks.Registry

	// Progress builds the per-task progress indicator. Nil disables
	// progress reporting.
	Progress func(tasks.Task) tasks.Progress

	// Log receives per-task completion records. Nil means slog.Default.
	Log *slog.Logger
}

// DefaultWorkers reserves two cores for the coordinator and the OS,
// with a floor of one.
func DefaultWorkers() int {
	n := runtime.NumCPU() - 2
	if n < 1 {
		n = 1
	}
	return n
}

// Stream executes the tasks and sends each outcome as it completes.
//
// Outcomes arrive in completion order, not task order. The channel closes
// once every dispatched task has reported; after a Faulted outcome no
// further tasks are dispatched, so the channel may close with fewer
// outcomes than tasks.
func (p *Pool) Stream(ctx context.Context, list []tasks.Task) <-chan Outcome {
	workers := p.Workers
	if workers < 1 {
		workers = DefaultWorkers()
	}

	out := make(chan Outcome)
	go func() {
		defer close(out)

		g, ctx := errgroup.WithContext(ctx)
		taskCh := make(chan tasks.Task)

		g.Go(func() error {
			defer close(taskCh)
			for _, t := range list {
				select {
				case taskCh <- t:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})

		for i := 0; i < workers; i++ {
			g.Go(func() error {
				for t := range taskCh {
					oc := p.execute(ctx, t)
					select {
					case out <- oc:
					case <-ctx.Done():
						return ctx.Err()
					}
					if oc.Status == StatusFaulted {
						// Cancel the group so the dispatcher stops
						// handing out tasks.
						return fmt.Errorf("%w: %s: %v", ErrTaskFaulted, t, oc.Err)
					}
				}
				return nil
			})
		}

		// The fault is already delivered as an outcome; the group error
		// only serves to cancel dispatch.
		_ = g.Wait()
	}()
	return out
}

// Run executes the tasks and collects all outcomes. Bulk counterpart of
// Stream; returns ErrTaskFaulted (wrapped with the first fault) when the
// run aborted early.
func (p *Pool) Run(ctx context.Context, list []tasks.Task) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(list))
	var faulted error
	for oc := range p.Stream(ctx, list) {
		outcomes = append(outcomes, oc)
		if oc.Status == StatusFaulted && faulted == nil {
			faulted = fmt.Errorf("%w: %s: %v", ErrTaskFaulted, oc.Task, oc.Err)
		}
	}
	return outcomes, faulted
}

func (p *Pool) execute(ctx context.Context, t tasks.Task) Outcome {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}

	var prog tasks.Progress = tasks.NopProgress{}
	if p.Progress != nil {
		prog = p.Progress(t)
	}

	start := time.Now()
	rows, err := p.invoke(ctx, t, prog)
	dur := time.Since(start)

	oc := Outcome{Task: t, Rows: rows, Err: err, Duration: dur}
	switch {
	case err == nil:
		oc.Status = StatusSuccess
		rowsProduced.Add(float64(len(rows)))
		log.Debug("task complete",
			slog.String("function", t.Function),
			slog.Int("position", t.Position),
			slog.Int("rows", len(rows)),
			slog.Duration("duration", dur))
	case errors.Is(err, tasks.ErrNotApplicable):
		oc.Status = StatusSkipped
		oc.Rows = nil
		log.Debug("task skipped",
			slog.String("function", t.Function),
			slog.Int("position", t.Position),
			slog.String("reason", err.Error()))
	default:
		oc.Status = StatusFaulted
		oc.Rows = nil
		log.Error("task faulted",
			slog.String("function", t.Function),
			slog.Int("position", t.Position),
			slog.String("error", err.Error()))
	}

	taskTotal.WithLabelValues(oc.Status.String()).Inc()
	taskDuration.Observe(dur.Seconds())
	return oc
}

// invoke resolves and calls the task function, converting panics into
// errors carrying the recovered value and stack.
func (p *Pool) invoke(ctx context.Context, t tasks.Task, prog tasks.Progress) (rows []results.Row, err error) {
	fn, err := p.Registry.Resolve(t.Function)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("task panic: %v\n%s", r, buf[:n])
		}
	}()
	return fn(ctx, t.Args, prog)
}
