// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/time/rate"
)

// redrawLimit throttles terminal redraws so a hundred concurrent bars
// stepping in tight loops do not saturate the write path.
var redrawLimit = rate.Every(100 * time.Millisecond)

// Coordinator owns a block of terminal lines and redraws progress bars
// into them. Worker goroutines update their bars concurrently; all
// terminal writes are serialized behind the coordinator's mutex and
// positioned with ANSI save/restore so interleaved updates never tear.
//
// On a non-terminal (piped or redirected) output the coordinator draws
// nothing; the bars become no-ops.
type Coordinator struct {
	mu      sync.Mutex
	out     io.Writer
	tty     bool
	lines   int
	limiter *rate.Limiter
	started bool
}

// NewCoordinator creates a coordinator managing `lines` terminal lines,
// one bar per line. The output is stderr; results on stdout stay clean.
func NewCoordinator(lines int) *Coordinator {
	if lines < 1 {
		lines = 1
	}
	return &Coordinator{
		out:     os.Stderr,
		tty:     isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
		lines:   lines,
		limiter: rate.NewLimiter(redrawLimit, 1),
	}
}

// Lines returns the number of managed terminal lines.
func (c *Coordinator) Lines() int { return c.lines }

// Bar returns the bar drawn on the given line (wrapped modulo the
// managed line count, so task positions map onto the worker lines).
func (c *Coordinator) Bar(line int, label string) *Bar {
	if line < 0 {
		line = -line
	}
	return &Bar{c: c, line: line % c.lines, label: label}
}

// start reserves the managed lines on first use.
func (c *Coordinator) start() {
	if c.started || !c.tty {
		c.started = true
		return
	}
	c.started = true
	for i := 0; i < c.lines; i++ {
		fmt.Fprintln(c.out)
	}
}

// render redraws one line. force bypasses the redraw throttle, used for
// terminal states so a finished bar is never left showing stale counts.
func (c *Coordinator) render(line int, text string, force bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.tty {
		return
	}
	c.start()
	if !force && !c.limiter.Allow() {
		return
	}

	up := c.lines - line
	// Save cursor, move up into the reserved block, clear, draw, restore.
	fmt.Fprintf(c.out, "\0337\033[%dA\r\033[K%s\0338", up, text)
}

// Close moves past the reserved block so subsequent output starts on a
// fresh line.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tty && c.started {
		fmt.Fprintln(c.out)
	}
}

// Bar is one progress indicator on a coordinator line. It satisfies the
// executor's progress contract (SetTotal / Step / Done).
//
// Thread Safety: a Bar belongs to the single goroutine driving its task;
// the coordinator serializes the terminal writes underneath.
type Bar struct {
	c       *Coordinator
	line    int
	label   string
	total   int
	current int
}

// SetTotal declares the number of steps the bar expects.
func (b *Bar) SetTotal(total int) {
	b.total = total
	b.c.render(b.line, b.text(), false)
}

// Step advances the bar by n steps.
func (b *Bar) Step(n int) {
	b.current += n
	b.c.render(b.line, b.text(), false)
}

// Done fills the bar and redraws it unconditionally.
func (b *Bar) Done() {
	if b.total > 0 {
		b.current = b.total
	}
	b.c.render(b.line, b.text(), true)
}

func (b *Bar) text() string {
	return fmt.Sprintf("%s %s", Styles.Subtitle.Render(b.label), renderBar(b.current, b.total, 30))
}
