// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package eventlog loads XES event logs into an in-memory, ordered case
// sequence. Only the trace structure and the concept:name attributes are
// read; everything else in the XES document is skipped.
package eventlog

import (
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Case is one process instance: its identifier and the ordered activity
// names of its events.
type Case struct {
	ID         string
	Activities []string
}

// Log is an ordered case sequence. Change-point locations index into
// Cases: a change point at i means the process changed between case i
// and case i+1.
type Log struct {
	// Name is the log's display name, the file base name without the
	// .xes / .xes.gz extension.
	Name string

	// Cases holds the traces in document order.
	Cases []Case
}

// CaseCount returns the number of cases.
func (l *Log) CaseCount() int { return len(l.Cases) }

// BaseName strips the event-log extensions from a file path.
func BaseName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".xes")
	return name
}

// Load reads an XES log from path, transparently decompressing .gz.
//
// Outputs:
//   - *Log: the parsed case sequence; cases appear in document order.
//   - error: non-nil on open, decompression, or XML failures.
func Load(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("decompress event log %s: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	log, err := Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse event log %s: %w", path, err)
	}
	log.Name = BaseName(path)
	return log, nil
}

// Parse decodes an XES document from r.
//
// The decoder streams tokens, so arbitrarily large documents never load
// fully into memory; only the extracted case sequence does.
func Parse(r io.Reader) (*Log, error) {
	decoder := xml.NewDecoder(r)

	log := &Log{}
	var current *Case
	inEvent := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode XES: %w", err)
		}

		switch elem := token.(type) {
		case xml.StartElement:
			switch elem.Name.Local {
			case "trace":
				current = &Case{}
			case "event":
				inEvent = true
			case "string":
				if current == nil {
					continue
				}
				key, value := attrPair(elem)
				if key != "concept:name" {
					continue
				}
				if inEvent {
					current.Activities = append(current.Activities, value)
				} else {
					current.ID = value
				}
			}
		case xml.EndElement:
			switch elem.Name.Local {
			case "event":
				inEvent = false
			case "trace":
				if current != nil {
					log.Cases = append(log.Cases, *current)
					current = nil
				}
			}
		}
	}
	return log, nil
}

func attrPair(elem xml.StartElement) (key, value string) {
	for _, attr := range elem.Attr {
		switch attr.Name.Local {
		case "key":
			key = attr.Value
		case "value":
			value = attr.Value
		}
	}
	return key, value
}
