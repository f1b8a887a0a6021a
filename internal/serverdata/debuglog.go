// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package serverdata

import (
	"fmt"
	"io"
	"sort"
)

// DebugEvent records one occurrence of a recognized instance-attribute key
// while parsing a sector file, for logs/debug_attributes.log.
type DebugEvent struct {
	Attribute  string
	SourceFile string
	AbsX, AbsY uint16
	Z          uint8
	LocalX     int
	LocalY     int
	Line       string
}

// WriteDebugLog writes one line per event, sorted by attribute kind then
// source position, matching spec.md §4.3/§6's debug_attributes.log contract.
func WriteDebugLog(w io.Writer, events []DebugEvent) error {
	sorted := make([]DebugEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Attribute != sorted[j].Attribute {
			return sorted[i].Attribute < sorted[j].Attribute
		}
		if sorted[i].SourceFile != sorted[j].SourceFile {
			return sorted[i].SourceFile < sorted[j].SourceFile
		}
		return sorted[i].AbsX < sorted[j].AbsX
	})

	for _, ev := range sorted {
		_, err := fmt.Fprintf(w, "%s\t%s\t(%d,%d,%d)\tlocal=(%d,%d)\t%s\n",
			ev.Attribute, ev.SourceFile, ev.AbsX, ev.AbsY, ev.Z, ev.LocalX, ev.LocalY, ev.Line)
		if err != nil {
			return fmt.Errorf("serverdata: failed writing debug log: %w", err)
		}
	}
	return nil
}
