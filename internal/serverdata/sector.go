// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package serverdata

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kelindar/mapforge"
	"github.com/kelindar/mapforge/internal/coord"
)

// maxContainerDepth bounds container-in-container recursion, per the
// recursion-depth guard called for in spec.md §9.
const maxContainerDepth = 16

// ErrContainerTooDeep-shaped failures are treated as a malformed record: the
// offending (sub)item is simply dropped, matching the "skip, never abort"
// policy for per-line/per-record errors in spec.md §7.

// flagTokens are the recognized tile state flag names.
var flagTokens = map[string]mapforge.TileFlag{
	"Refresh":        mapforge.TileFlagRefresh,
	"ProtectionZone": mapforge.TileFlagProtectionZone,
	"NoPvp":          mapforge.TileFlagNoPvp,
	"NoLogout":       mapforge.TileFlagNoLogout,
	"PvpZone":        mapforge.TileFlagPvpZone,
}

// ParseSectorFilename decodes "SSSS-SSSS-ZZ.sec" into its sector coordinates.
func ParseSectorFilename(filename string) (sectorX, sectorY, z int, ok bool) {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	parts := strings.Split(stem, "-")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	sx, err1 := strconv.Atoi(parts[0])
	sy, err2 := strconv.Atoi(parts[1])
	zz, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return sx, sy, zz, true
}

// ParseSectorFile parses one sector file's text into a Sector plus the
// debug-attribute events observed while doing so. Malformed lines are
// skipped individually and counted; they never abort the file.
func ParseSectorFile(filename, text string) (mapforge.Sector, []DebugEvent, int) {
	sx, sy, z, ok := ParseSectorFilename(filename)
	if !ok {
		return mapforge.Sector{}, nil, 0
	}

	sec := mapforge.Sector{SectorX: sx, SectorY: sy, Z: z}
	var events []DebugEvent
	skipped := 0

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(stripComment(rawLine))
		if line == "" {
			continue
		}

		coordPart, rest, ok := strings.Cut(line, ":")
		if !ok {
			skipped++
			continue
		}
		lx, ly, ok := parseLocalCoord(coordPart)
		if !ok {
			skipped++
			continue
		}

		contentStr, flagsPart, hasContent := extractBraced(rest, "Content")
		if !hasContent {
			skipped++
			continue
		}

		absX, absY := sec.AbsCoord(lx, ly)
		ctx := itemEventCtx{
			sourceFile: filename,
			absX:       absX,
			absY:       absY,
			z:          uint8(z),
			localX:     lx,
			localY:     ly,
			line:       rawLine,
		}

		var items []mapforge.ItemInstance
		for _, spec := range splitTopLevel(contentStr, ',') {
			spec = strings.TrimSpace(spec)
			if spec == "" {
				continue
			}
			inst, evs, ok := parseItemSpec(spec, 0, ctx)
			if !ok {
				skipped++
				continue
			}
			items = append(items, inst)
			events = append(events, evs...)
		}
		if len(items) == 0 {
			continue
		}

		sec.Tiles = append(sec.Tiles, mapforge.Tile{
			X:     absX,
			Y:     absY,
			Z:     uint8(z),
			Flags: parseTileFlags(flagsPart),
			Items: items,
		})
	}

	return sec, events, skipped
}

// parseLocalCoord parses "LX-LY" into sector-local coordinates.
func parseLocalCoord(s string) (lx, ly int, ok bool) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	x, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return x, y, true
}

// parseTileFlags scans s for any of the recognized flag tokens.
func parseTileFlags(s string) mapforge.TileFlag {
	var flags mapforge.TileFlag
	for name, bit := range flagTokens {
		if containsToken(s, name) {
			flags |= bit
		}
	}
	return flags
}

// containsToken reports whether name appears in s as a standalone,
// comma/space-delimited token (not as a substring of a longer identifier).
func containsToken(s, name string) bool {
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		if tok == name {
			return true
		}
	}
	return false
}

// itemEventCtx carries the source coordinates used to stamp DebugEvents
// produced while parsing one tile's item specs (including nested content).
type itemEventCtx struct {
	sourceFile string
	absX, absY uint16
	z          uint8
	localX     int
	localY     int
	line       string
}

// Names of the internal ItemInstance fields that recognized server
// instance-attribute keys map onto, per spec.md §4.3's table. The mapping
// itself is done by the key sets below and the switch in parseItemSpec.
const (
	fieldActionID = "action_id"
	fieldUniqueID = "unique_id"
	fieldCount    = "count"
	fieldCharges  = "charges"
	fieldLiquid   = "liquid_subtype"
	fieldTeleport = "teleport_dest"
)

var actionIDKeys = map[string]bool{"ChestQuestNumber": true, "KeyholeNumber": true, "DoorQuestNumber": true, "Level": true}
var uniqueIDKeys = map[string]bool{"KeyNumber": true, "DoorQuestValue": true}
var liquidKeys = map[string]bool{"ContainerLiquidType": true, "PoolLiquidType": true}
var discardedKeys = map[string]bool{"RemainingExpireTime": true, "SavedExpireTime": true, "RemainingUses": true}

// parseItemSpec parses one item spec (a type id followed by zero or more
// Key=Value assignments, at most one String="...", and at most one
// Content={...}) into an ItemInstance, recursing into Content.
func parseItemSpec(spec string, depth int, ctx itemEventCtx) (mapforge.ItemInstance, []DebugEvent, bool) {
	if depth > maxContainerDepth {
		return mapforge.ItemInstance{}, nil, false
	}

	// Content must be extracted before String, so that String's closing
	// quote-scan doesn't get confused by a brace inside Content.
	contentStr, rest, hasContent := extractBraced(spec, "Content")
	text, rest, hasText := extractQuotedString(rest, "String")

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return mapforge.ItemInstance{}, nil, false
	}

	typeID, err := strconv.Atoi(fields[0])
	if err != nil || typeID < 0 || typeID > 0xFFFF {
		return mapforge.ItemInstance{}, nil, false
	}

	inst := mapforge.ItemInstance{TypeID: uint16(typeID)}
	var events []DebugEvent

	emit := func(attr string) {
		events = append(events, DebugEvent{
			Attribute: attr, SourceFile: ctx.sourceFile,
			AbsX: ctx.absX, AbsY: ctx.absY, Z: ctx.z,
			LocalX: ctx.localX, LocalY: ctx.localY, Line: ctx.line,
		})
	}

	for _, tok := range fields[1:] {
		key, val, ok := splitAssignment(tok)
		if !ok {
			continue
		}
		switch {
		case discardedKeys[key]:
			continue // server supplies defaults; never logged

		case actionIDKeys[key]:
			if n, err := strconv.Atoi(val); err == nil {
				inst.ActionID = clampU16(n)
				emit(key)
			}

		case uniqueIDKeys[key]:
			if n, err := strconv.Atoi(val); err == nil {
				inst.UniqueID = clampU16(n)
				emit(key)
			}

		case key == "Amount":
			if n, err := strconv.Atoi(val); err == nil {
				inst.Count = clampCount(n)
				emit(key)
			}

		case key == "Charges":
			if n, err := strconv.Atoi(val); err == nil {
				inst.Charges = clampU16(n)
				emit(key)
			}

		case liquidKeys[key]:
			if n, err := strconv.Atoi(val); err == nil {
				inst.LiquidSubtype = coord.TranslateLiquid(uint8(clampU16(n)))
				inst.HasLiquid = true
				emit(key)
			}

		case key == "AbsTeleportDestination":
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				pos := coord.Unpack(int32(n))
				inst.TeleportDest = &mapforge.TeleportDest{X: pos.X, Y: pos.Y, Z: pos.Z}
				emit(key)
			}
		}
	}

	if hasText {
		inst.Text = text
		emit("String")
	}

	if hasContent {
		for _, childSpec := range splitTopLevel(contentStr, ',') {
			childSpec = strings.TrimSpace(childSpec)
			if childSpec == "" {
				continue
			}
			child, evs, ok := parseItemSpec(childSpec, depth+1, ctx)
			if !ok {
				continue
			}
			inst.Contents = append(inst.Contents, child)
			events = append(events, evs...)
		}
	}

	return inst, events, true
}

func clampCount(n int) uint8 {
	switch {
	case n < 1:
		return 1
	case n > 255:
		return 255
	default:
		return uint8(n)
	}
}

// extractBraced finds "<marker>={...}" in s (brace- and quote-depth aware)
// and returns its inner contents plus s with that span removed.
func extractBraced(s, marker string) (inner, rest string, found bool) {
	needle := marker + "={"
	idx := strings.Index(s, needle)
	if idx < 0 {
		return "", s, false
	}

	start := idx + len(needle)
	depth := 1
	inQuotes := false
	i := start
	for ; i < len(s); i++ {
		c := s[i]
		if inQuotes {
			switch c {
			case '\\':
				i++
			case '"':
				inQuotes = false
			}
			continue
		}
		switch c {
		case '"':
			inQuotes = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start:i], s[:idx] + s[i+1:], true
			}
		}
	}
	return "", s, false // unterminated; leave s untouched, caller treats as absent
}

// extractQuotedString finds `<marker>="..."` in s, honoring \" and \\
// escapes, and returns the unescaped string plus s with that span removed.
func extractQuotedString(s, marker string) (value, rest string, found bool) {
	needle := marker + `="`
	idx := strings.Index(s, needle)
	if idx < 0 {
		return "", s, false
	}

	start := idx + len(needle)
	i := start
	for ; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return unescapeQuoted(s[start:i]), s[:idx] + s[i+1:], true
		}
	}
	return "", s, false // unterminated
}

func unescapeQuoted(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
