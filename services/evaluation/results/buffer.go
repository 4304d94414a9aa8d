// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"sort"
)

// DefaultWriteEvery is the flush interval in appended tasks.
const DefaultWriteEvery = 100

// Buffer accumulates result rows into one wide table and flushes it to a
// CSV file incrementally.
//
// Description:
//
//	Different algorithm families report different parameter and score
//	columns. Append reconciles them: the table's column set is the
//	sorted union of everything seen so far and only ever grows; cells a
//	row never reported stay empty. Periodic flushes append only the new
//	rows when the column set is unchanged since the last flush, and
//	rewrite the whole file with a fresh header when it changed, so the
//	on-disk header always matches the on-disk rows without O(n^2)
//	rewriting in the common case.
//
// Thread Safety: NOT safe for concurrent use. The buffer is owned by the
// single goroutine that collects executor outcomes; workers never touch it.
type Buffer struct {
	path       string
	writeEvery int

	columns []string
	colSet  map[string]struct{}
	rows    []map[string]string

	fileColumns []string // header currently on disk, nil before first write
	nextWrite   int      // first row index not yet on disk
	tasks       int      // tasks appended since the last periodic flush
}

// NewBuffer creates a buffer writing to path every writeEvery appended
// tasks (<=0 means DefaultWriteEvery). Any previous file at path is
// replaced on the first flush.
func NewBuffer(path string, writeEvery int) *Buffer {
	if writeEvery <= 0 {
		writeEvery = DefaultWriteEvery
	}
	return &Buffer{
		path:       path,
		writeEvery: writeEvery,
		colSet:     make(map[string]struct{}),
	}
}

// Append adds one task's rows to the table.
//
// Description:
//
//	Flattens the rows, grows the column set to the union of old and new
//	columns, and appends in delivery order. Appending zero rows still
//	counts the task for the flush interval. Column order inside a row
//	is irrelevant; the table's column order is the sorted union.
func (b *Buffer) Append(rows ...Row) {
	for _, row := range rows {
		cells := row.Flatten()
		for col := range cells {
			if _, seen := b.colSet[col]; !seen {
				b.colSet[col] = struct{}{}
				b.columns = append(b.columns, col)
			}
		}
		b.rows = append(b.rows, cells)
	}
	sort.Strings(b.columns)
	b.tasks++
}

// MaybeFlush persists pending rows when the flush interval is due.
//
// Outputs:
//   - bool: true if a write happened.
//   - error: non-nil on I/O failure; the in-memory table is unaffected.
func (b *Buffer) MaybeFlush() (bool, error) {
	if b.tasks < b.writeEvery {
		return false, nil
	}
	if b.nextWrite == len(b.rows) {
		return false, nil
	}
	if err := b.flush(); err != nil {
		return false, err
	}
	b.tasks = 0
	return true, nil
}

// FlushFinal unconditionally rewrites the full table, headers included.
// Called once at batch completion, including after a fault abort, so the
// file on disk is the recovery point for a manual re-run.
func (b *Buffer) FlushFinal() error {
	if err := b.rewrite(); err != nil {
		return err
	}
	b.tasks = 0
	return nil
}

// RowCount returns the number of appended rows.
func (b *Buffer) RowCount() int { return len(b.rows) }

// Columns returns the current column set in table order.
func (b *Buffer) Columns() []string {
	return slices.Clone(b.columns)
}

// Cell returns the value at (row, column); absent cells are empty.
func (b *Buffer) Cell(row int, column string) string {
	if row < 0 || row >= len(b.rows) {
		return ""
	}
	return b.rows[row][column]
}

func (b *Buffer) flush() error {
	if b.fileColumns != nil && slices.Equal(b.fileColumns, b.columns) {
		return b.appendNewRows()
	}
	return b.rewrite()
}

// appendNewRows appends rows past nextWrite to the existing file, no header.
func (b *Buffer) appendNewRows() error {
	f, err := os.OpenFile(b.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open results file for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, cells := range b.rows[b.nextWrite:] {
		if err := w.Write(b.record(cells)); err != nil {
			return fmt.Errorf("append results row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append results rows: %w", err)
	}
	b.nextWrite = len(b.rows)
	return nil
}

// rewrite replaces the file with a fresh header and every buffered row.
func (b *Buffer) rewrite() error {
	f, err := os.Create(b.path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(b.columns); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}
	for _, cells := range b.rows {
		if err := w.Write(b.record(cells)); err != nil {
			return fmt.Errorf("write results row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write results rows: %w", err)
	}

	b.fileColumns = slices.Clone(b.columns)
	b.nextWrite = len(b.rows)
	return nil
}

func (b *Buffer) record(cells map[string]string) []string {
	record := make([]string, len(b.columns))
	for i, col := range b.columns {
		record[i] = cells[col] // missing cells render empty
	}
	return record
}
