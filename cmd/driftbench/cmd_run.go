// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/DriftBench/cmd/driftbench/config"
	"github.com/AleutianAI/DriftBench/pkg/logging"
	"github.com/AleutianAI/DriftBench/pkg/ux"
	"github.com/AleutianAI/DriftBench/services/evaluation/datasets"
	"github.com/AleutianAI/DriftBench/services/evaluation/executor"
	"github.com/AleutianAI/DriftBench/services/evaluation/results"
	"github.com/AleutianAI/DriftBench/services/evaluation/runners"
	"github.com/AleutianAI/DriftBench/services/evaluation/tasks"
)

// runBenchmark is the `driftbench run` entry point: load and validate the
// configuration, expand the task grid, execute it on the worker pool, and
// consolidate every result row into the output CSV.
func runBenchmark(cmd *cobra.Command, args []string) error {
	started := time.Now()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "driftbench",
		JSON:    cfg.Logging.JSON,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	runID := uuid.NewString()
	log := logger.With("run_id", runID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Resolve datasets and bind the family runners.
	sources := make([]datasets.Source, 0, len(cfg.Datasets))
	for _, ds := range cfg.Datasets {
		sources = append(sources, datasets.Source{
			Path:         ds.Path,
			Dir:          ds.Dir,
			GoldStandard: ds.GoldStandard,
			ChangePoints: ds.ChangePoints,
		})
	}
	resolved, err := datasets.Resolve(sources)
	if err != nil {
		return err
	}
	if len(resolved) == 0 {
		return fmt.Errorf("no datasets resolved from %d sources", len(sources))
	}

	registry := tasks.NewRegistry()
	suite := &runners.Suite{IntermediateRoot: cfg.Output.IntermediateDir}
	suite.RegisterAll(registry)

	// Fail fast on unknown function names before any work is dispatched.
	approaches := make(map[string]tasks.Approach, len(cfg.Approaches))
	for name, a := range cfg.Approaches {
		if a.Enabled {
			if _, err := registry.Resolve(a.Function); err != nil {
				return fmt.Errorf("approach %q: %w", name, err)
			}
		}
		approaches[name] = tasks.Approach{
			Enabled:    a.Enabled,
			Function:   a.Function,
			MetaParams: a.MetaParams,
			Params:     a.Params,
		}
	}

	// Intermediate artifacts are only written into family directories
	// that already exist, so pre-create them for the enabled families.
	if cfg.Output.IntermediateDir != "" {
		for _, name := range cfg.EnabledApproaches() {
			dir := filepath.Join(cfg.Output.IntermediateDir, runners.FamilyDir(cfg.Approaches[name].Function))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create intermediate dir: %w", err)
			}
		}
	}

	taskList := tasks.Build(approaches, resolved, tasks.BuildOptions{
		Lag:     cfg.Meta.Lag,
		TestRun: testRun,
	})
	if len(taskList) == 0 {
		return fmt.Errorf("configuration produced no tasks")
	}

	poolWorkers := workers
	if poolWorkers <= 0 {
		poolWorkers = cfg.Meta.Workers
	}
	if poolWorkers <= 0 {
		poolWorkers = executor.DefaultWorkers()
	}

	log.Info("starting benchmark",
		"tasks", len(taskList),
		"datasets", len(resolved),
		"workers", poolWorkers,
		"test_run", testRun)

	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Warn("metrics listener stopped", "error", err)
			}
		}()
	}

	if dir := filepath.Dir(cfg.Output.ResultsFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}
	buffer := results.NewBuffer(cfg.Output.ResultsFile, cfg.Meta.WriteEvery)

	pool := &executor.Pool{
		Workers:  poolWorkers,
		Registry: registry,
		Log:      log.Slog(),
	}

	var succeeded, skipped int
	var faulted error

	if cfg.Meta.SingleBar {
		// Streaming mode: one aggregate completion bar, rows appended
		// and flushed as outcomes arrive.
		coord := ux.NewCoordinator(1)
		bar := coord.Bar(0, "benchmark")
		bar.SetTotal(len(taskList))

		for oc := range pool.Stream(ctx, taskList) {
			bar.Step(1)
			switch oc.Status {
			case executor.StatusSuccess:
				succeeded++
				buffer.Append(oc.Rows...)
			case executor.StatusSkipped:
				skipped++
				buffer.Append() // counts toward the flush interval
			case executor.StatusFaulted:
				if faulted == nil {
					faulted = fmt.Errorf("%s: %w", oc.Task, oc.Err)
				}
			}
			if _, err := buffer.MaybeFlush(); err != nil {
				log.Error("incremental flush failed", "error", err)
			}
		}
		bar.Done()
		coord.Close()
	} else {
		// Bulk mode: per-position progress bars, results appended in
		// task order once the pool drains.
		coord := ux.NewCoordinator(poolWorkers)
		pool.Progress = func(t tasks.Task) tasks.Progress {
			return coord.Bar(t.Position, fmt.Sprintf("%s[%d]", t.Function, t.Position))
		}

		outcomes, runErr := pool.Run(ctx, taskList)
		coord.Close()
		faulted = runErr

		sort.Slice(outcomes, func(i, j int) bool {
			return outcomes[i].Task.Position < outcomes[j].Task.Position
		})
		for _, oc := range outcomes {
			switch oc.Status {
			case executor.StatusSuccess:
				succeeded++
				buffer.Append(oc.Rows...)
			case executor.StatusSkipped:
				skipped++
				buffer.Append()
			}
			if _, err := buffer.MaybeFlush(); err != nil {
				log.Error("incremental flush failed", "error", err)
			}
		}
	}

	// The final write always happens, fault or not, so the CSV on disk
	// reflects every completed task.
	if err := buffer.FlushFinal(); err != nil {
		return fmt.Errorf("final flush: %w", err)
	}

	elapsed := results.FormatClock(time.Since(started))
	log.Info("benchmark finished",
		"succeeded", succeeded,
		"skipped", skipped,
		"rows", buffer.RowCount(),
		"elapsed", elapsed)
	ux.Summary(succeeded, skipped, buffer.RowCount(), elapsed)

	if faulted != nil {
		return fmt.Errorf("benchmark aborted: %w", faulted)
	}
	return nil
}
