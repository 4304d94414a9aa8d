// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validConfig = `
meta:
  f1_lag: 200
  write_every: 50
  workers: 4
  single_bar: true
approaches:
  bose:
    enabled: true
    function: bose
    meta-params:
      do_wc: false
    params:
      window_size: [100, 200]
      step_size: [10]
  lcdd:
    enabled: false
    function: lcdd
    params:
      window_pairs: [[100, 10]]
      stable_period: [2]
datasets:
  - path: logs/bose_log.xes.gz
    change_points: [1199, 2399]
  - dir: logs/ostovar
    change_points: [999, 1999]
output:
  results_file: out/results.csv
  intermediate_dir: out/intermediate
logging:
  level: debug
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Meta.Lag)
	assert.Equal(t, 50, cfg.Meta.WriteEvery)
	assert.Equal(t, 4, cfg.Meta.Workers)
	assert.True(t, cfg.Meta.SingleBar)

	require.Contains(t, cfg.Approaches, "bose")
	bose := cfg.Approaches["bose"]
	assert.True(t, bose.Enabled)
	assert.Equal(t, "bose", bose.Function)
	assert.Equal(t, map[string]any{"do_wc": false}, bose.MetaParams)
	assert.Len(t, bose.Params["window_size"], 2)

	require.Len(t, cfg.Datasets, 2)
	assert.Equal(t, []int{1199, 2399}, cfg.Datasets[0].ChangePoints)
	assert.Equal(t, "logs/ostovar", cfg.Datasets[1].Dir)

	assert.Equal(t, "out/results.csv", cfg.Output.ResultsFile)
	assert.Equal(t, "out/intermediate", cfg.Output.IntermediateDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
approaches:
  bose:
    enabled: true
    function: bose
    params:
      window_size: [100]
datasets:
  - path: logs/a.xes
`))
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Meta.Lag)
	assert.Equal(t, 100, cfg.Meta.WriteEvery)
	assert.Equal(t, 0, cfg.Meta.Workers)
	assert.Equal(t, "algorithm_results.csv", cfg.Output.ResultsFile)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRejectsMissingFunction(t *testing.T) {
	_, err := Load(writeConfig(t, `
approaches:
  broken:
    enabled: true
    params:
      window_size: [100]
datasets:
  - path: logs/a.xes
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

func TestLoadRejectsAmbiguousDataset(t *testing.T) {
	_, err := Load(writeConfig(t, `
approaches:
  bose:
    enabled: true
    function: bose
    params:
      window_size: [100]
datasets:
  - path: logs/a.xes
    dir: logs/dir
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")
}

func TestLoadRejectsBadLevel(t *testing.T) {
	_, err := Load(writeConfig(t, `
approaches:
  bose:
    enabled: true
    function: bose
    params:
      window_size: [100]
datasets:
  - path: logs/a.xes
logging:
  level: loud
`))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestEnabledApproaches(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	assert.Equal(t, []string{"bose"}, cfg.EnabledApproaches())
}
