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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/DriftBench/services/evaluation/runners"
	"github.com/AleutianAI/DriftBench/services/evaluation/tasks"
)

// --- Global Command Variables ---
var (
	configPath  string // Benchmark configuration file
	testRun     bool   // Truncate to one combination + one dataset per family
	workers     int    // CLI override for meta.workers
	metricsAddr string // Optional prometheus listen address, e.g. ":9125"

	rootCmd = &cobra.Command{
		Use:   "driftbench",
		Short: "A benchmark driver for process drift detection algorithms",
		Long: `DriftBench runs parameterized change-point-detection analyses
				against labeled event logs in parallel and consolidates every
				result into one CSV table.`,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark described by the configuration file",
		RunE:  runBenchmark, // Defined in cmd_run.go
	}

	functionsCmd = &cobra.Command{
		Use:   "functions",
		Short: "List the registered algorithm family functions",
		Run: func(cmd *cobra.Command, args []string) {
			reg := tasks.NewRegistry()
			(&runners.Suite{}).RegisterAll(reg)
			for _, name := range reg.Names() {
				fmt.Println(name)
			}
		},
	}
)

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "bench.yaml", "Path to the benchmark configuration file")
	runCmd.Flags().BoolVar(&testRun, "test-run", false, "Smoke test: one parameter combination and one dataset per family")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Worker count override (0 uses the config, then CPU count minus two)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose prometheus metrics on this address (e.g. :9125)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(functionsCmd)
}
