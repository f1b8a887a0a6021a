// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package serverdata

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kelindar/mapforge"
)

// homeLabel matches a Hometeleporter's descriptive label, e.g.
// `"Home Thais (1)"` or `"Home Carlin (3)"`. Group 1 is the town name,
// group 2 the parenthesized variant number; "(1)" is preferred over any
// other variant when a town has more than one Hometeleporter.
var homeLabel = regexp.MustCompile(`^Home\s+(.+?)\s+\((\d+)\)$`)

// homeSetStart matches one `SetStart(Obj2,[x,y,z])` move-use entry.
var homeSetStart = regexp.MustCompile(`SetStart\(\s*\w+\s*,\s*\[([^\]]+)\]\s*\)`)

// ParseHometeleporters parses the move-use registry's Hometeleporter
// section: a label line naming the town followed by a SetStart call giving
// its temple position. Variant "(1)" wins when a town appears more than
// once; later non-"(1)" duplicates are ignored.
func ParseHometeleporters(text string, depotOf map[string]int) []mapforge.Town {
	type entry struct {
		pos     mapforge.TeleportDest
		variant int
	}
	byName := make(map[string]entry)

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(stripComment(lines[i]))
		label, ok := extractLabel(line)
		if !ok {
			continue
		}
		m := homeLabel.FindStringSubmatch(label)
		if m == nil {
			continue
		}
		name := m[1]
		variant, _ := strconv.Atoi(m[2])

		pos, ok := findSetStartNear(lines, i)
		if !ok {
			continue
		}

		if prev, exists := byName[name]; exists && (prev.variant == 1 || variant != 1) {
			continue
		}
		byName[name] = entry{pos: pos, variant: variant}
	}

	towns := make([]mapforge.Town, 0, len(byName))
	for name, e := range byName {
		id := depotOf[name] + 1
		towns = append(towns, mapforge.Town{ID: uint32(id), Name: name, Temple: e.pos})
	}
	return towns
}

// extractLabel pulls a quoted string out of a line, if present.
func extractLabel(line string) (string, bool) {
	start := strings.IndexByte(line, '"')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(line[start+1:], '"')
	if end < 0 {
		return "", false
	}
	return line[start+1 : start+1+end], true
}

// findSetStartNear scans forward from lines[from] for the next SetStart
// call, stopping at the next blank line (each registry entry is a
// self-contained block).
func findSetStartNear(lines []string, from int) (mapforge.TeleportDest, bool) {
	for i := from; i < len(lines); i++ {
		line := strings.TrimSpace(stripComment(lines[i]))
		if line == "" && i > from {
			break
		}
		m := homeSetStart.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		return parseBracketTriple(m[1])
	}
	return mapforge.TeleportDest{}, false
}

// markLine matches a map-file fallback entry: `Mark = ("Name",[x,y,z])`.
var markLine = regexp.MustCompile(`Mark\s*=\s*\(\s*"([^"]*)"\s*,\s*\[([^\]]+)\]\s*\)`)

// ParseTownMarks parses the map file's Mark fallback entries, used when a
// town has no Hometeleporter entry.
func ParseTownMarks(text string, depotOf map[string]int) []mapforge.Town {
	var towns []mapforge.Town
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(stripComment(rawLine))
		m := markLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		pos, ok := parseBracketTriple(m[2])
		if !ok {
			continue
		}
		name := m[1]
		id := depotOf[name] + 1
		towns = append(towns, mapforge.Town{ID: uint32(id), Name: name, Temple: pos})
	}
	return towns
}

// MergeTowns combines Hometeleporter-derived towns with Mark fallbacks,
// preferring the Hometeleporter entry whenever both name the same town.
func MergeTowns(fromHome, fromMarks []mapforge.Town) []mapforge.Town {
	seen := make(map[string]bool, len(fromHome))
	out := make([]mapforge.Town, 0, len(fromHome)+len(fromMarks))
	for _, t := range fromHome {
		seen[t.Name] = true
		out = append(out, t)
	}
	for _, t := range fromMarks {
		if !seen[t.Name] {
			out = append(out, t)
		}
	}
	return out
}
