// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datasets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntList(t *testing.T) {
	got, err := ParseIntList("[999, 1999]")
	require.NoError(t, err)
	assert.Equal(t, []int{999, 1999}, got)

	got, err = ParseIntList("[]")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseIntList("999, 1999")
	assert.Error(t, err)
	_, err = ParseIntList("[a, b]")
	assert.Error(t, err)
}

// TestFromGoldStandardMalformedEntry verifies malformed ground truth
// degrades to an empty label list instead of failing the batch.
func TestFromGoldStandardMalformedEntry(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "gold_standard.csv")
	content := "log_name,change_point\n" +
		"good_log.xes.gz,\"[250, 750]\"\n" +
		"bad_log.xes.gz,not-a-list\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0644))

	entries, err := FromGoldStandard(csvPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, []int{250, 750}, entries[0].ChangePoints)
	assert.Equal(t, "good_log", entries[0].Name)
	assert.Empty(t, entries[1].ChangePoints)
	assert.Equal(t, filepath.Join(dir, "bad_log.xes.gz"), entries[1].LogPath)
}

func TestResolveDirSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_log.xes.gz", "a_log.xes", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	entries, err := Resolve([]Source{{Dir: dir, ChangePoints: []int{999, 1999}}})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a_log", entries[0].Name)
	assert.Equal(t, "b_log", entries[1].Name)
	assert.Equal(t, []int{999, 1999}, entries[0].ChangePoints)
}

func TestResolveEmptySource(t *testing.T) {
	_, err := Resolve([]Source{{}})
	assert.Error(t, err)
}
