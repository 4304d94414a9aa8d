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
	"path/filepath"
	"sort"
)

// WriteIntermediate writes one task's rows to
// <root>/<family>/<name>.csv as a small standalone table.
//
// Description:
//
//	Intermediate artifacts are best-effort: if root or the family
//	subdirectory does not exist the write is silently skipped, so runs
//	without a prepared intermediate tree lose nothing. Only a write
//	failure against an existing directory is reported.
//
// Inputs:
//   - root: intermediate results root; empty disables writing.
//   - family: family subdirectory name.
//   - name: file stem, derived from the log name and distinguishing
//     parameters by the caller.
//   - rows: rows to write; zero rows skips the write.
func WriteIntermediate(root, family, name string, rows []Row) error {
	if root == "" || len(rows) == 0 {
		return nil
	}
	dir := filepath.Join(root, family)
	if _, err := os.Stat(dir); err != nil {
		return nil // opportunistic: absent directory is not an error
	}

	colSet := make(map[string]struct{})
	flattened := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		cells := row.Flatten()
		for col := range cells {
			colSet[col] = struct{}{}
		}
		flattened = append(flattened, cells)
	}
	columns := make([]string, 0, len(colSet))
	for col := range colSet {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	path := filepath.Join(dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create intermediate file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("write intermediate header: %w", err)
	}
	for _, cells := range flattened {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = cells[col]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write intermediate row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write intermediate rows: %w", err)
	}
	return nil
}
