// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package otbm writes the world map binary: a node-tree root holding map
// metadata, grouped tile areas, and the town registry, built from already
// stack-normalized tiles.
package otbm

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kelindar/mapforge"
	"github.com/kelindar/mapforge/internal/node"
)

// ErrContainerTooDeep is returned when a container nests past maxContainerDepth.
var ErrContainerTooDeep = errors.New("otbm: container nesting exceeds depth limit")

// File-level constants, fixed by the OTBM 1 wire format.
const (
	mapVersion  = 1
	otbMajor    = 1
	otbMinor    = 100
	mapWidth    = 65535
	mapHeight   = 65535
	areaWindow  = 256
	maxContainerDepth = 16
)

// Root-level node tags.
const (
	tagMapData  = 0x02
	tagTileArea = 0x04
	tagTile     = 0x05
	tagItem     = 0x06
	tagTown        = 0x0C
	tagTownTemple  = 0x0D
	tagHouseTile   = 0x0E
)

// Tile node attribute tags.
const (
	attrTileFlags = 0x03
)

// MapData attribute tags.
const (
	attrDescription  = 0x01
	attrExtSpawnFile = 0x0B
	attrExtHouseFile = 0x0D
)

// Item attribute tags, written in a fixed order per spec.
const (
	attrCount       = 0x0F
	attrActionID    = 0x04
	attrUniqueID    = 0x05
	attrCharges     = 0x16
	attrText        = 0x06
	attrTeleportDst = 0x08
)

// Options carries the MapData description text and auxiliary file names.
type Options struct {
	Description  string
	SpawnFile    string
	HouseFile    string
}

// Write renders tiles, houses, and towns as an OTBM byte stream. tiles must
// already be stack-normalized (spec.md's stacking invariant is the caller's
// responsibility, not this writer's).
func Write(tiles []mapforge.Tile, towns []mapforge.Town, opts Options) ([]byte, error) {
	enc := node.NewEncoder()
	enc.WriteRaw([]byte("OTBM"))

	enc.StartNode(0x00) // root node: its payload is the map header below
	enc.WriteUint32(mapVersion)
	enc.WriteUint32(mapWidth)
	enc.WriteUint32(mapHeight)
	enc.WriteUint32(otbMajor)
	enc.WriteUint32(otbMinor)

	enc.StartNode(tagMapData)
	writeMapDataAttrs(enc, opts)
	if err := writeTileAreas(enc, tiles); err != nil {
		return nil, err
	}
	writeTowns(enc, towns)
	enc.EndNode() // MapData

	enc.EndNode() // root

	return enc.Bytes(), nil
}

func writeMapDataAttrs(enc *node.Encoder, opts Options) {
	if opts.Description != "" {
		writeStringAttr(enc, attrDescription, opts.Description)
	}
	if opts.SpawnFile != "" {
		writeStringAttr(enc, attrExtSpawnFile, opts.SpawnFile)
	}
	if opts.HouseFile != "" {
		writeStringAttr(enc, attrExtHouseFile, opts.HouseFile)
	}
}

// areaKey groups a tile into its 256x256 window plus floor.
type areaKey struct {
	baseX, baseY uint16
	z            uint8
}

func writeTileAreas(enc *node.Encoder, tiles []mapforge.Tile) error {
	groups := make(map[areaKey][]mapforge.Tile)
	var order []areaKey

	const mask = ^uint16(areaWindow - 1)
	for _, t := range tiles {
		key := areaKey{baseX: t.X & mask, baseY: t.Y & mask, z: t.Z}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t)
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.z != b.z {
			return a.z < b.z
		}
		if a.baseX != b.baseX {
			return a.baseX < b.baseX
		}
		return a.baseY < b.baseY
	})

	for _, key := range order {
		group := groups[key]
		sort.Slice(group, func(i, j int) bool {
			if group[i].X != group[j].X {
				return group[i].X < group[j].X
			}
			return group[i].Y < group[j].Y
		})

		enc.StartNode(tagTileArea)
		enc.WriteUint16(key.baseX)
		enc.WriteUint16(key.baseY)
		enc.WriteByte(key.z)
		for _, t := range group {
			if err := writeTile(enc, key, t); err != nil {
				return err
			}
		}
		enc.EndNode()
	}
	return nil
}

func writeTile(enc *node.Encoder, key areaKey, t mapforge.Tile) error {
	tag := byte(tagTile)
	if t.IsHouseTile() {
		tag = tagHouseTile
	}

	enc.StartNode(tag)
	enc.WriteByte(byte(t.X - key.baseX))
	enc.WriteByte(byte(t.Y - key.baseY))
	if t.IsHouseTile() {
		enc.WriteUint32(t.HouseID)
	}
	if t.Flags != mapforge.TileFlagNone {
		writeUint32Attr(enc, attrTileFlags, uint32(t.Flags))
	}
	for _, it := range t.Items {
		if err := writeItem(enc, it, 0); err != nil {
			return err
		}
	}
	enc.EndNode()
	return nil
}

func writeItem(enc *node.Encoder, it mapforge.ItemInstance, depth int) error {
	if depth > maxContainerDepth {
		return fmt.Errorf("otbm: item %d: %w", it.TypeID, ErrContainerTooDeep)
	}

	enc.StartNode(tagItem)
	enc.WriteUint16(it.TypeID)

	// Liquid items have no stack count; they reuse the same attribute slot
	// to carry the (already-translated) fluid subtype byte instead.
	switch {
	case it.HasLiquid:
		writeByteAttr(enc, attrCount, it.LiquidSubtype)
	case it.Count > 1:
		writeByteAttr(enc, attrCount, it.Count)
	}
	if it.ActionID != 0 {
		writeUint16Attr(enc, attrActionID, it.ActionID)
	}
	if it.UniqueID != 0 {
		writeUint16Attr(enc, attrUniqueID, it.UniqueID)
	}
	if it.Charges != 0 {
		writeUint16Attr(enc, attrCharges, it.Charges)
	}
	if it.Text != "" {
		writeStringAttr(enc, attrText, it.Text)
	}
	if it.TeleportDest != nil {
		writeTeleportAttr(enc, it.TeleportDest)
	}

	for _, child := range it.Contents {
		if err := writeItem(enc, child, depth+1); err != nil {
			return err
		}
	}
	enc.EndNode()
	return nil
}

func writeTowns(enc *node.Encoder, towns []mapforge.Town) {
	sorted := make([]mapforge.Town, len(towns))
	copy(sorted, towns)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	enc.StartNode(tagTown)
	for _, t := range sorted {
		enc.StartNode(tagTownTemple)
		enc.WriteUint32(t.ID)
		enc.WriteString([]byte(t.Name))
		enc.WriteUint16(t.Temple.X)
		enc.WriteUint16(t.Temple.Y)
		enc.WriteByte(t.Temple.Z)
		enc.EndNode()
	}
	enc.EndNode()
}

// --- small attribute-writing helpers, mirroring internal/otb's TLV shape ---

func writeStringAttr(enc *node.Encoder, tag byte, s string) {
	raw := []byte(s)
	enc.WriteByte(tag)
	enc.WriteUint16(uint16(len(raw)))
	enc.WriteBytes(raw)
}

func writeByteAttr(enc *node.Encoder, tag byte, v uint8) {
	enc.WriteByte(tag)
	enc.WriteUint16(1)
	enc.WriteBytes([]byte{v})
}

func writeUint16Attr(enc *node.Encoder, tag byte, v uint16) {
	enc.WriteByte(tag)
	enc.WriteUint16(2)
	enc.WriteBytes([]byte{byte(v), byte(v >> 8)})
}

func writeUint32Attr(enc *node.Encoder, tag byte, v uint32) {
	enc.WriteByte(tag)
	enc.WriteUint16(4)
	enc.WriteBytes([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func writeTeleportAttr(enc *node.Encoder, dst *mapforge.TeleportDest) {
	enc.WriteByte(attrTeleportDst)
	enc.WriteUint16(5)
	enc.WriteBytes([]byte{
		byte(dst.X), byte(dst.X >> 8),
		byte(dst.Y), byte(dst.Y >> 8),
		dst.Z,
	})
}
