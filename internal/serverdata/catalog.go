// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package serverdata parses the textual server-data sources (object
// catalog, creature/NPC files, house registry, sector tile files, town
// sources) into typed records, tolerating malformed individual records
// without aborting the whole file.
package serverdata

import (
	"strconv"
	"strings"

	"github.com/kelindar/mapforge"
)

// groupNames maps the recognized catalog flag tokens naming an item's
// group directly onto the ItemGroup enumeration. The first such token in
// an item's Flags list sets its group; an item with none of these tokens
// present keeps ItemGroup zero (GroupNone).
var groupNames = map[string]mapforge.ItemGroup{
	"Ground":     mapforge.GroupGround,
	"Container":  mapforge.GroupContainer,
	"Splash":     mapforge.GroupSplash,
	"Rune":       mapforge.GroupRune,
	"Weapon":     mapforge.GroupWeapon,
	"Ammunition": mapforge.GroupAmmunition,
	"Armor":      mapforge.GroupArmor,
	"Teleport":   mapforge.GroupTeleport,
	"MagicField": mapforge.GroupMagicField,
	"Writeable":  mapforge.GroupWriteable,
	"Key":        mapforge.GroupKey,
	"Fluid":      mapforge.GroupFluid,
	"Door":       mapforge.GroupDoor,
	"Deprecated": mapforge.GroupDeprecated,
}

// CatalogResult is the outcome of parsing the object catalog: successfully
// parsed item types keyed by id, plus a count of malformed records skipped.
type CatalogResult struct {
	Items    map[uint16]mapforge.ItemType
	Skipped  int
}

// ParseCatalog parses the object catalog's textual record format:
//
//	TypeID = 100
//	Name = "Longsword"
//	Flags = {Weapon, Cumulative}
//	Attributes = {Capacity=8, DisguiseTarget=3639, Weight=10}
//
// Records are separated by a blank line or by the next TypeID line.
// Trailing "# comment" text is stripped from every line before parsing.
func ParseCatalog(text string) CatalogResult {
	res := CatalogResult{Items: make(map[uint16]mapforge.ItemType)}

	var cur *mapforge.ItemType
	flush := func() {
		if cur == nil {
			return
		}
		if cur.Name == "" {
			res.Skipped++
		} else {
			res.Items[cur.TypeID] = *cur
		}
		cur = nil
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := stripComment(rawLine)
		line = strings.TrimSpace(line)

		if line == "" {
			flush()
			continue
		}

		key, val, ok := splitAssignment(line)
		if !ok {
			continue
		}

		switch key {
		case "TypeID":
			id, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				flush()
				continue
			}
			flush()
			cur = &mapforge.ItemType{TypeID: uint16(id)}

		case "Name":
			if cur == nil {
				continue
			}
			cur.Name = unquote(val)

		case "Flags":
			if cur == nil {
				continue
			}
			for _, tok := range splitBraceList(val) {
				tok = strings.TrimSpace(tok)
				if tok == "Cumulative" {
					cur.Cumulative = true
				}
				if g, ok := groupNames[tok]; ok && cur.Group == mapforge.GroupNone {
					cur.Group = g
				}
			}

		case "Attributes":
			if cur == nil {
				continue
			}
			for _, kv := range splitBraceList(val) {
				k, v, ok := splitAssignment(strings.TrimSpace(kv))
				if !ok {
					continue
				}
				n, err := strconv.Atoi(strings.TrimSpace(v))
				if err != nil {
					continue
				}
				switch k {
				case "Capacity":
					cur.Capacity = uint16(n)
				case "DisguiseTarget":
					cur.DisguiseTarget = uint16(n)
					// Weight and RemainingUses are recognized but ignored,
					// per spec.
				}
			}
		}
	}
	flush()

	return res
}

// stripComment removes a trailing "# ..." inline comment.
func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// splitAssignment splits "Key = Value" into its two sides. ok is false if
// there is no '=' to split on.
func splitAssignment(line string) (key, val string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

// splitBraceList splits the comma-separated contents of a "{ ... }" block.
// Braces are optional in val; whitespace around each entry is trimmed by
// the caller.
func splitBraceList(val string) []string {
	val = strings.TrimSpace(val)
	val = strings.TrimPrefix(val, "{")
	val = strings.TrimSuffix(val, "}")
	if val == "" {
		return nil
	}
	return strings.Split(val, ",")
}

// unquote strips a single pair of surrounding double quotes, if present.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
