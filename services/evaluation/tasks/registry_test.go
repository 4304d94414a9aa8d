// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/DriftBench/services/evaluation/results"
)

func noopFunc(ctx context.Context, args Args, prog Progress) ([]results.Row, error) {
	return nil, nil
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("bose", noopFunc))

	fn, err := reg.Resolve("bose")
	require.NoError(t, err)
	require.NotNil(t, fn)
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	reg := NewRegistry()

	fn, err := reg.Resolve("nonexistent")
	require.ErrorIs(t, err, ErrUnknownFunction)
	assert.Contains(t, err.Error(), "nonexistent")
	assert.Nil(t, fn)
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("bose", noopFunc))
	err := reg.Register("bose", noopFunc)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegistry_NilFunctionRejected(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register("bose", nil)
	require.ErrorIs(t, err, ErrNilFunction)
}

func TestRegistry_MustRegisterPanicsOnDuplicate(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("bose", noopFunc)

	assert.Panics(t, func() {
		reg.MustRegister("bose", noopFunc)
	})
}

func TestRegistry_NamesSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zheng_dbscan", "bose", "maaradji"} {
		reg.MustRegister(name, noopFunc)
	}

	assert.Equal(t, []string{"bose", "maaradji", "zheng_dbscan"}, reg.Names())
}
