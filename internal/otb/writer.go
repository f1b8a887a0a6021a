// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package otb writes the item-type database binary: a node-tree root
// carrying one child node per item type, tagged by the type's group and
// holding its attributes as length-prefixed TLV blocks.
package otb

import (
	"fmt"
	"sort"

	"golang.org/x/text/encoding/charmap"

	"github.com/kelindar/mapforge"
	"github.com/kelindar/mapforge/internal/node"
)

// Root node attribute tag: the version record embedded in the root node's
// own payload, ahead of any item-type children.
const rootVersionTag = 0x00

// Root version record layout: major/minor/build as u32 each, followed by a
// 128-byte NUL-padded Latin-1 identifier string.
const (
	otbMajor      = 1
	otbMinor      = 100
	otbBuild      = 1
	identifierLen = 128
)

const otbIdentifier = "OTB 1.0.0-7.70-cipsoft"

// Item attribute TLV tags within an item-type node.
const (
	attrServerID = 0x10
	attrClientID = 0x11
	attrName     = 0x12
	attrSpeed    = 0x14
	attrMaxItems = 0x16
)

// Write renders the item-type catalog as an OTB byte stream. Per spec.md
// §4.2, item types with a zero TypeID or an empty Name are skipped; the
// catalog parser already drops empty-named records before they reach
// Write, but Write enforces both rules itself rather than trusting the
// caller.
func Write(items map[uint16]mapforge.ItemType) ([]byte, error) {
	ids := make([]uint16, 0, len(items))
	for id, it := range items {
		if id == 0 || it.Name == "" {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	enc := node.NewEncoder()
	// 4-byte zero prefix precedes the root node, matching the reference
	// OTB file framing (an empty "version" slot at the file head).
	enc.WriteRaw([]byte{0x00, 0x00, 0x00, 0x00})

	enc.StartNode(rootVersionTag)
	if err := writeVersionRecord(enc); err != nil {
		return nil, err
	}
	for _, id := range ids {
		writeItemNode(enc, items[id])
	}
	enc.EndNode()

	return enc.Bytes(), nil
}

func writeVersionRecord(enc *node.Encoder) error {
	enc.WriteUint32(otbMajor)
	enc.WriteUint32(otbMinor)
	enc.WriteUint32(otbBuild)

	raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(otbIdentifier))
	if err != nil {
		return fmt.Errorf("otb: encoding identifier: %w", err)
	}
	padded := make([]byte, identifierLen)
	copy(padded, raw)
	enc.WriteBytes(padded)
	return nil
}

func writeItemNode(enc *node.Encoder, it mapforge.ItemType) {
	enc.StartNode(byte(it.Group))
	enc.WriteUint32(it.OTBFlags())

	writeAttr(enc, attrServerID, uint16LE(it.TypeID))
	writeAttr(enc, attrClientID, uint16LE(it.ClientID()))
	writeAttr(enc, attrName, []byte(it.Name))
	if it.Capacity != 0 {
		writeAttr(enc, attrMaxItems, uint16LE(it.Capacity))
	}
	// attrSpeed is a recognized tag with no corresponding ItemType field.

	enc.EndNode()
}

func uint16LE(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

// writeAttr writes one attribute TLV: a tag byte, a u16 length (the raw,
// unescaped payload byte count), then the escape-encoded payload bytes.
// raw must be the UNESCAPED representation; escaping happens here.
func writeAttr(enc *node.Encoder, tag byte, raw []byte) {
	enc.WriteBytes([]byte{tag})
	enc.WriteUint16(uint16(len(raw)))
	enc.WriteBytes(raw)
}
