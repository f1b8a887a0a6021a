// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package spawn implements the Creature-Placement Planner: turning a
// monster/NPC spawn region into concrete per-creature tile offsets,
// expanding outward ring by ring from the region's center and respecting
// a global per-floor claim set so no two creatures land on the same tile.
package spawn

import (
	"fmt"

	"github.com/kelindar/intmap"

	"github.com/kelindar/mapforge"
)

// defaultRingCap bounds how far the expanding-ring search goes before giving
// up on a region when Plan is given a ringCap <= 0, matching the default in
// internal/config.Config.PlacementRingCap.
const defaultRingCap = 50

// npcFallbackMinRadius and npcFallbackMaxRadius bound the ring search used to
// relocate an NPC whose declared center and four cardinal neighbors are all
// taken, per spec.md §4.6 step 3.
const (
	npcFallbackMinRadius = 2
	npcFallbackMaxRadius = 9
)

// WalkableSet tracks which tiles are walkable, one intmap.Map per floor,
// keyed by packed (x,y). It also doubles as the global claim set: once a
// tile is claimed by a placed creature it is removed from the walkable set
// for that floor, so no later region can reuse it.
type WalkableSet struct {
	floors [16]*intmap.Map
}

// NewWalkableSet returns an empty set ready for Mark/Claim calls.
func NewWalkableSet() *WalkableSet {
	var ws WalkableSet
	for z := range ws.floors {
		ws.floors[z] = intmap.New(1024, .95)
	}
	return &ws
}

func packXY(x, y uint16) uint32 {
	return uint32(x)<<16 | uint32(y)
}

// Mark records (x,y,z) as walkable and available for placement.
func (ws *WalkableSet) Mark(x, y uint16, z uint8) {
	if int(z) >= len(ws.floors) {
		return
	}
	ws.floors[z].Store(packXY(x, y), 1)
}

// IsFree reports whether (x,y,z) is walkable and not yet claimed.
func (ws *WalkableSet) IsFree(x, y uint16, z uint8) bool {
	if int(z) >= len(ws.floors) {
		return false
	}
	v, ok := ws.floors[z].Load(packXY(x, y))
	return ok && v == 1
}

// Claim marks (x,y,z) as taken, so no later placement can reuse it.
func (ws *WalkableSet) Claim(x, y uint16, z uint8) {
	if int(z) >= len(ws.floors) {
		return
	}
	ws.floors[z].Store(packXY(x, y), 0)
}

// ring returns the Chebyshev-distance-r offsets around the origin, in a
// stable clockwise order (y growing downward) starting at (-r, -r).
func ring(r int) [][2]int {
	if r == 0 {
		return [][2]int{{0, 0}}
	}
	var out [][2]int
	for x := -r; x <= r; x++ {
		out = append(out, [2]int{x, -r})
	}
	for y := -r + 1; y <= r; y++ {
		out = append(out, [2]int{r, y})
	}
	for x := r - 1; x >= -r; x-- {
		out = append(out, [2]int{x, r})
	}
	for y := r - 1; y >= -r+1; y-- {
		out = append(out, [2]int{-r, y})
	}
	return out
}

// cardinalNeighbors are the four tiles adjacent to an NPC's declared
// center, tried before falling back to an expanding ring search.
var cardinalNeighbors = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Plan places one region's creatures, expanding outward ring by ring from
// the center until amount creatures are placed or the ring cap is reached.
// NPC regions whose exact center is already claimed are special-cased: the
// planner first tries the four cardinal neighbors, then falls back to a
// ring search bounded to radius npcFallbackMinRadius..npcFallbackMaxRadius;
// on success the region's center shifts to the relocated tile and the NPC
// is placed at offset (0,0) relative to it.
func Plan(ws *WalkableSet, region mapforge.SpawnRegion, ringCap int) (mapforge.PlacedRegion, error) {
	if ringCap <= 0 {
		ringCap = defaultRingCap
	}

	placed := mapforge.PlacedRegion{
		SpawnRegion: region,
		ShiftedX:    region.CenterX,
		ShiftedY:    region.CenterY,
	}

	if region.IsNPC && !ws.IsFree(region.CenterX, region.CenterY, region.Z) {
		x, y, ok := tryCardinals(ws, region)
		if !ok {
			x, y, ok = tryRing(ws, region, npcFallbackMinRadius, npcFallbackMaxRadius)
		}
		if !ok {
			return placed, fmt.Errorf("spawn: region %q: NPC center (%d,%d,%d) is taken and no free tile within radius %d..%d",
				region.RaceID, region.CenterX, region.CenterY, region.Z, npcFallbackMinRadius, npcFallbackMaxRadius)
		}
		placed.ShiftedX, placed.ShiftedY = x, y
		ws.Claim(x, y, region.Z)
		placed.Placed = append(placed.Placed, mapforge.PlacedCreature{DX: 0, DY: 0})
		return placed, nil
	}

	need := region.Amount

	// The declared Radius only bounds the region's intended footprint; the
	// search still continues past it up to ringCap so a crowded region
	// doesn't silently under-fill.
	for r := 0; r <= ringCap && need > 0; r++ {
		for _, off := range ring(r) {
			if need <= 0 {
				break
			}
			x := int(placed.ShiftedX) + off[0]
			y := int(placed.ShiftedY) + off[1]
			if x < 0 || y < 0 || x > 0xFFFF || y > 0xFFFF {
				continue
			}
			ux, uy := uint16(x), uint16(y)
			if !ws.IsFree(ux, uy, region.Z) {
				continue
			}
			ws.Claim(ux, uy, region.Z)
			placed.Placed = append(placed.Placed, mapforge.PlacedCreature{
				DX: int(ux) - int(placed.ShiftedX),
				DY: int(uy) - int(placed.ShiftedY),
			})
			need--
		}
	}

	if need > 0 {
		return placed, fmt.Errorf("spawn: region %q under-filled by %d after ring cap %d", region.RaceID, need, ringCap)
	}
	return placed, nil
}

// tryCardinals attempts to relocate an NPC's center to one of its four
// cardinal neighbors, for when the declared center tile is already taken.
func tryCardinals(ws *WalkableSet, region mapforge.SpawnRegion) (x, y uint16, ok bool) {
	for _, off := range cardinalNeighbors {
		cx := int(region.CenterX) + off[0]
		cy := int(region.CenterY) + off[1]
		if cx < 0 || cy < 0 || cx > 0xFFFF || cy > 0xFFFF {
			continue
		}
		ux, uy := uint16(cx), uint16(cy)
		if ws.IsFree(ux, uy, region.Z) {
			return ux, uy, true
		}
	}
	return 0, 0, false
}

// tryRing searches rings minR..maxR (inclusive) around region's declared
// center for the first free tile, in ring() order, for the NPC relocation
// fallback once tryCardinals has failed.
func tryRing(ws *WalkableSet, region mapforge.SpawnRegion, minR, maxR int) (x, y uint16, ok bool) {
	for r := minR; r <= maxR; r++ {
		for _, off := range ring(r) {
			cx := int(region.CenterX) + off[0]
			cy := int(region.CenterY) + off[1]
			if cx < 0 || cy < 0 || cx > 0xFFFF || cy > 0xFFFF {
				continue
			}
			ux, uy := uint16(cx), uint16(cy)
			if ws.IsFree(ux, uy, region.Z) {
				return ux, uy, true
			}
		}
	}
	return 0, 0, false
}
