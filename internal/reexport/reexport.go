// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package reexport implements the Sector Re-exporter: decoding an OTBM map
// byte stream back into per-sector tile records, the inverse of
// internal/otbm's Write. It is a diagnostic/round-trip tool, not part of
// the forward pipeline: it lets a generated map be checked against its
// source sectors.
package reexport

import (
	"errors"
	"fmt"

	"github.com/kelindar/mapforge"
	"github.com/kelindar/mapforge/internal/node"
)

// ErrContainerTooDeep is returned when a decoded container nests past
// maxContainerDepth, mirroring internal/otbm's write-side guard.
var ErrContainerTooDeep = errors.New("reexport: container nesting exceeds depth limit")

// OTBM node/attribute tags, mirrored from internal/otbm (kept independent
// so each package can evolve its own wire constants without entangling the
// two directions of the format).
const (
	tagMapData   = 0x02
	tagTileArea  = 0x04
	tagTile      = 0x05
	tagItem      = 0x06
	tagTown      = 0x0C
	tagHouseTile = 0x0E

	attrTileFlags   = 0x03
	attrActionID    = 0x04
	attrUniqueID    = 0x05
	attrText        = 0x06
	attrTeleportDst = 0x08
	attrCount       = 0x0F
	attrCharges     = 0x16
)

// maxContainerDepth mirrors internal/otbm's write-side guard.
const maxContainerDepth = 16

// Result is the outcome of re-exporting one OTBM stream: its tiles grouped
// back into sectors, plus every item type id that validTypeIDs rejected.
type Result struct {
	Sectors      map[mapforge.SectorKey]*mapforge.Sector
	InvalidTypes []uint16
}

// FromOTBM decodes data (the byte stream produced by internal/otbm.Write)
// back into per-sector tiles. validTypeIDs, if non-nil, filters out items
// whose type id the catalog never defined: the invalid items are dropped
// from the tile and the type id is recorded once in Result.InvalidTypes,
// per spec.md §7's non-fatal InvalidTypeId policy.
func FromOTBM(data []byte, validTypeIDs map[uint16]bool) (Result, error) {
	res := Result{Sectors: make(map[mapforge.SectorKey]*mapforge.Sector)}
	seenInvalid := make(map[uint16]bool)

	d := node.NewDecoder(data, 4)
	if _, err := d.OpenNode(); err != nil { // root
		return res, fmt.Errorf("reexport: opening root node: %w", err)
	}
	if _, err := d.ReadUint32(); err != nil { // version
		return res, err
	}
	if _, err := d.ReadUint32(); err != nil { // width
		return res, err
	}
	if _, err := d.ReadUint32(); err != nil { // height
		return res, err
	}
	if _, err := d.ReadUint32(); err != nil { // otb major
		return res, err
	}
	if _, err := d.ReadUint32(); err != nil { // otb minor
		return res, err
	}

	tag, err := d.OpenNode() // MapData
	if err != nil {
		return res, err
	}
	if tag != tagMapData {
		return res, fmt.Errorf("reexport: expected MapData node, got tag 0x%02X", tag)
	}

	if err := skipAttrs(d); err != nil {
		return res, err
	}

	for d.PeekIsStart() {
		childTag, err := peekTag(d)
		if err != nil {
			return res, err
		}
		switch childTag {
		case tagTileArea:
			if err := readTileArea(d, res.Sectors, validTypeIDs, seenInvalid); err != nil {
				return res, err
			}
		case tagTown:
			if err := skipNodeBody(d); err != nil { // towns carry no tile data
				return res, err
			}
		default:
			if err := skipNodeBody(d); err != nil {
				return res, err
			}
		}
	}
	if err := d.CloseNode(); err != nil { // MapData
		return res, err
	}
	if err := d.CloseNode(); err != nil { // root
		return res, err
	}

	for id := range seenInvalid {
		res.InvalidTypes = append(res.InvalidTypes, id)
	}
	return res, nil
}

// peekTag opens the next node and returns its tag. The decoder has no
// rewind, so the node stays open afterward: the caller is responsible for
// consuming its body and closing marker (readTileArea / skipNodeBody).
func peekTag(d *node.Decoder) (byte, error) {
	return d.OpenNode()
}

func readTileArea(d *node.Decoder, sectors map[mapforge.SectorKey]*mapforge.Sector, validTypeIDs map[uint16]bool, seenInvalid map[uint16]bool) error {
	// The tag was already consumed by peekTag/OpenNode in the caller.
	baseX, err := d.ReadUint16()
	if err != nil {
		return err
	}
	baseY, err := d.ReadUint16()
	if err != nil {
		return err
	}
	z, err := d.ReadByte()
	if err != nil {
		return err
	}

	for d.PeekIsStart() {
		tag, err := d.OpenNode()
		if err != nil {
			return err
		}
		if tag != tagTile && tag != tagHouseTile {
			if err := skipNodeBody(d); err != nil {
				return err
			}
			continue
		}

		lx, err := d.ReadByte()
		if err != nil {
			return err
		}
		ly, err := d.ReadByte()
		if err != nil {
			return err
		}

		var houseID uint32
		if tag == tagHouseTile {
			houseID, err = d.ReadUint32()
			if err != nil {
				return err
			}
		}

		tile := mapforge.Tile{
			X:       baseX + uint16(lx),
			Y:       baseY + uint16(ly),
			Z:       z,
			HouseID: houseID,
		}

		for !d.PeekIsEnd() {
			if d.PeekIsStart() {
				item, err := readItem(d, 0, validTypeIDs, seenInvalid)
				if err != nil {
					return err
				}
				if item != nil {
					tile.Items = append(tile.Items, *item)
				}
				continue
			}
			attrTag, err := d.ReadByte()
			if err != nil {
				return err
			}
			n, err := d.ReadUint16()
			if err != nil {
				return err
			}
			payload, err := d.ReadBytes(int(n))
			if err != nil {
				return err
			}
			if attrTag == attrTileFlags && len(payload) == 4 {
				tile.Flags = mapforge.TileFlag(le32(payload))
			}
		}
		if err := d.CloseNode(); err != nil {
			return err
		}

		// Sectors are grouped by the tile's own 32x32 block, not by the
		// enclosing 256x256 TileArea window (one area spans many sectors).
		key := mapforge.SectorKey{
			SectorX: int(tile.X) / mapforge.SectorSize,
			SectorY: int(tile.Y) / mapforge.SectorSize,
			Z:       int(z),
		}
		sec, ok := sectors[key]
		if !ok {
			sec = &mapforge.Sector{SectorX: key.SectorX, SectorY: key.SectorY, Z: key.Z}
			sectors[key] = sec
		}
		sec.Tiles = append(sec.Tiles, tile)
	}
	return d.CloseNode() // TileArea
}

func readItem(d *node.Decoder, depth int, validTypeIDs map[uint16]bool, seenInvalid map[uint16]bool) (*mapforge.ItemInstance, error) {
	if depth > maxContainerDepth {
		return nil, fmt.Errorf("reexport: %w", ErrContainerTooDeep)
	}

	tag, err := d.OpenNode()
	if err != nil {
		return nil, err
	}
	if tag != tagItem {
		return nil, fmt.Errorf("reexport: expected Item node, got tag 0x%02X", tag)
	}

	typeID, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}

	dropped := validTypeIDs != nil && !validTypeIDs[typeID]
	if dropped {
		seenInvalid[typeID] = true
	}

	inst := mapforge.ItemInstance{TypeID: typeID}
	for !d.PeekIsEnd() {
		if d.PeekIsStart() {
			child, err := readItem(d, depth+1, validTypeIDs, seenInvalid)
			if err != nil {
				return nil, err
			}
			if child != nil {
				inst.Contents = append(inst.Contents, *child)
			}
			continue
		}
		attrTag, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		n, err := d.ReadUint16()
		if err != nil {
			return nil, err
		}
		payload, err := d.ReadBytes(int(n))
		if err != nil {
			return nil, err
		}
		applyItemAttr(&inst, attrTag, payload)
	}
	if err := d.CloseNode(); err != nil {
		return nil, err
	}

	if dropped {
		return nil, nil
	}
	return &inst, nil
}

func applyItemAttr(inst *mapforge.ItemInstance, tag byte, payload []byte) {
	switch tag {
	case attrCount:
		if len(payload) == 1 {
			inst.Count = payload[0]
		}
	case attrActionID:
		if len(payload) == 2 {
			inst.ActionID = le16(payload)
		}
	case attrUniqueID:
		if len(payload) == 2 {
			inst.UniqueID = le16(payload)
		}
	case attrCharges:
		if len(payload) == 2 {
			inst.Charges = le16(payload)
		}
	case attrText:
		inst.Text = string(payload)
	case attrTeleportDst:
		if len(payload) == 5 {
			inst.TeleportDest = &mapforge.TeleportDest{
				X: le16(payload[0:2]),
				Y: le16(payload[2:4]),
				Z: payload[4],
			}
		}
	}
}

// skipAttrs consumes leading attribute TLVs until the next start/end marker.
func skipAttrs(d *node.Decoder) error {
	for !d.PeekIsStart() && !d.PeekIsEnd() {
		if _, err := d.ReadByte(); err != nil {
			return err
		}
		n, err := d.ReadUint16()
		if err != nil {
			return err
		}
		if _, err := d.ReadBytes(int(n)); err != nil {
			return err
		}
	}
	return nil
}

// skipNodeBody consumes a node's body (the tag itself was already read by
// the caller's OpenNode) up to and including its end marker. Payload bytes
// are skipped one escape-decoded byte at a time, so bodies that are not
// attribute TLVs (such as town records) are skipped as well.
func skipNodeBody(d *node.Decoder) error {
	for !d.PeekIsEnd() {
		if d.PeekIsStart() {
			if _, err := d.OpenNode(); err != nil {
				return err
			}
			if err := skipNodeBody(d); err != nil {
				return err
			}
			continue
		}
		if _, err := d.ReadByte(); err != nil {
			return err
		}
	}
	return d.CloseNode()
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
