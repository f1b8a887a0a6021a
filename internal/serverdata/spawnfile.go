// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package serverdata

import (
	"strconv"
	"strings"

	"github.com/kelindar/mapforge"
)

// ParseSpawnFile parses the monster spawn registry's block format:
//
//	RaceID = rat
//	Center=[100,200,7]
//	Radius = 5
//	Amount = 10
//	Respawn = 60
//	NPC = 0
//
// Blocks are separated by a blank line or the next RaceID line, mirroring
// the object catalog's record grammar.
func ParseSpawnFile(text string) (regions []mapforge.SpawnRegion, skipped int) {
	var cur *mapforge.SpawnRegion
	var haveCenter bool

	flush := func() {
		if cur == nil {
			return
		}
		if cur.RaceID == "" || !haveCenter {
			skipped++
		} else {
			if cur.Amount <= 0 {
				cur.Amount = 1
			}
			if cur.Radius <= 0 {
				cur.Radius = 1
			}
			regions = append(regions, *cur)
		}
		cur = nil
		haveCenter = false
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(stripComment(rawLine))
		if line == "" {
			flush()
			continue
		}

		key, val, ok := splitAssignment(line)
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)

		if key == "RaceID" {
			flush()
			cur = &mapforge.SpawnRegion{RaceID: val}
			continue
		}
		if cur == nil {
			continue
		}

		switch key {
		case "Center":
			dst, ok := parseBracketTriple(val)
			if !ok {
				continue
			}
			cur.CenterX, cur.CenterY, cur.Z = dst.X, dst.Y, dst.Z
			haveCenter = true
		case "Radius":
			if n, err := strconv.Atoi(val); err == nil {
				cur.Radius = n
			}
		case "Amount":
			if n, err := strconv.Atoi(val); err == nil {
				cur.Amount = n
			}
		case "Respawn":
			if n, err := strconv.Atoi(val); err == nil {
				cur.Respawn = n
			}
		case "NPC":
			cur.IsNPC = val == "1" || strings.EqualFold(val, "true")
		}
	}
	flush()
	return regions, skipped
}
