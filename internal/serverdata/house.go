// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package serverdata

import (
	"strconv"
	"strings"

	"github.com/kelindar/mapforge"
)

// HouseResult is the outcome of parsing the house registry.
type HouseResult struct {
	Houses  []mapforge.House
	Skipped int
}

// ParseHouses parses the house registry's block format:
//
//	ID = 100
//	Name = "Thais House"
//	RentOffset = 500
//	Area = 3
//	GuildHouse = 0
//	Exit=[100,200,7]
//	Fields={[100,200,7],[101,200,7]}
func ParseHouses(text string) HouseResult {
	var res HouseResult
	var cur *mapforge.House

	flush := func() {
		if cur == nil {
			return
		}
		if cur.Name == "" {
			res.Skipped++
		} else {
			res.Houses = append(res.Houses, *cur)
		}
		cur = nil
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

		switch key {
		case "ID":
			id, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				flush()
				continue
			}
			flush()
			cur = &mapforge.House{ID: uint32(id)}

		case "Name":
			if cur == nil {
				continue
			}
			cur.Name = unquote(val)

		case "RentOffset":
			if cur == nil {
				continue
			}
			if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				cur.Rent = n
			}

		case "Area":
			if cur == nil {
				continue
			}
			if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				cur.Area = n
			}

		case "GuildHouse":
			if cur == nil {
				continue
			}
			cur.GuildHall = strings.TrimSpace(val) != "0"

		case "Exit":
			if cur == nil {
				continue
			}
			if pos, ok := parseBracketTriple(val); ok {
				cur.EntryX, cur.EntryY, cur.EntryZ = pos.X, pos.Y, pos.Z
			}

		case "Fields":
			if cur == nil {
				continue
			}
			for _, triple := range splitTopLevel(trimBraces(val), ',') {
				if pos, ok := parseBracketTriple(triple); ok {
					cur.Positions = append(cur.Positions, pos)
				}
			}
		}
	}
	flush()

	return res
}

// HouseArea is one entry of the house-area registry: an area id, name,
// price, and depot id (which determines the town id: depot_id + 1).
type HouseArea struct {
	AreaID  int
	Name    string
	Price   int
	DepotID int
}

// ParseHouseAreas parses lines shaped like:
//
//	Area = (3, "Thais, the City", 100000, 1)
//
// tolerating commas inside the quoted name.
func ParseHouseAreas(text string) []HouseArea {
	var out []HouseArea
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(stripComment(rawLine))
		if line == "" {
			continue
		}
		key, val, ok := splitAssignment(line)
		if !ok || key != "Area" {
			continue
		}

		val = strings.TrimSpace(val)
		val = strings.TrimPrefix(val, "(")
		val = strings.TrimSuffix(val, ")")

		fields := splitTopLevel(val, ',')
		if len(fields) != 4 {
			continue
		}

		areaID, err1 := strconv.Atoi(strings.TrimSpace(fields[0]))
		price, err2 := strconv.Atoi(strings.TrimSpace(fields[2]))
		depot, err3 := strconv.Atoi(strings.TrimSpace(fields[3]))
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		out = append(out, HouseArea{
			AreaID:  areaID,
			Name:    unquote(fields[1]),
			Price:   price,
			DepotID: depot,
		})
	}
	return out
}

func trimBraces(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	return s
}

// parseBracketTriple parses "[x,y,z]" into a TeleportDest.
func parseBracketTriple(s string) (mapforge.TeleportDest, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mapforge.TeleportDest{}, false
	}
	x, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	z, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return mapforge.TeleportDest{}, false
	}
	return mapforge.TeleportDest{X: clampU16(x), Y: clampU16(y), Z: clampU8(z)}, true
}

func clampU16(v int) uint16 {
	switch {
	case v < 0:
		return 0
	case v > 65535:
		return 65535
	default:
		return uint16(v)
	}
}

func clampU8(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 15:
		return 15
	default:
		return uint8(v)
	}
}
