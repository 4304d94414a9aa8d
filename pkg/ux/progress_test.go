// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func testCoordinator(lines int) (*Coordinator, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &Coordinator{
		out:     buf,
		tty:     true,
		lines:   lines,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}, buf
}

func TestBarRendersLabelAndPercent(t *testing.T) {
	c, buf := testCoordinator(2)
	bar := c.Bar(0, "bose[3]")
	bar.SetTotal(4)
	bar.Step(2)
	bar.Done()

	out := buf.String()
	assert.Contains(t, out, "bose[3]")
	assert.Contains(t, out, "100%")
}

func TestBarLinesWrapModulo(t *testing.T) {
	c, _ := testCoordinator(4)
	assert.Equal(t, 1, c.Bar(5, "x").line)
	assert.Equal(t, 3, c.Bar(3, "x").line)
	assert.Equal(t, 0, c.Bar(8, "x").line)
}

func TestNonTerminalDrawsNothing(t *testing.T) {
	c, buf := testCoordinator(1)
	c.tty = false

	bar := c.Bar(0, "quiet")
	bar.SetTotal(10)
	bar.Step(10)
	bar.Done()
	c.Close()

	assert.Empty(t, buf.String())
}

func TestConcurrentBarsDoNotRace(t *testing.T) {
	c, _ := testCoordinator(8)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(pos int) {
			defer wg.Done()
			bar := c.Bar(pos, "worker")
			bar.SetTotal(50)
			for s := 0; s < 50; s++ {
				bar.Step(1)
			}
			bar.Done()
		}(i)
	}
	wg.Wait()
	c.Close()
}

func TestRenderBarBounds(t *testing.T) {
	assert.Contains(t, renderBar(0, 10, 10), "0%")
	assert.Contains(t, renderBar(5, 10, 10), "50%")
	assert.Contains(t, renderBar(15, 10, 10), "100%")
	// Zero total must not divide by zero.
	assert.True(t, strings.Contains(renderBar(0, 0, 10), "%"))
}
