// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package otb

import (
	"testing"

	"github.com/kelindar/mapforge"
	"github.com/kelindar/mapforge/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodedAttr is one TLV attribute as read back off the wire, for assertions.
type decodedAttr struct {
	tag     byte
	payload []byte
}

// decodedItemNode is one item-type child node as read back off the wire.
type decodedItemNode struct {
	group byte
	flags uint32
	attrs []decodedAttr
}

// decodeForTest walks the OTB byte stream produced by Write, returning the
// root's version record bytes and every item-type node found.
func decodeForTest(t *testing.T, data []byte) (version []byte, items []decodedItemNode) {
	t.Helper()
	d := node.NewDecoder(data, 4) // skip the unescaped 4-byte zero prefix

	_, err := d.OpenNode() // root
	require.NoError(t, err)

	version, err = d.ReadBytes(4 + 4 + 4 + identifierLen)
	require.NoError(t, err)

	for d.PeekIsStart() {
		tag, err := d.OpenNode()
		require.NoError(t, err)

		flags, err := d.ReadUint32()
		require.NoError(t, err)

		it := decodedItemNode{group: tag, flags: flags}
		for !d.PeekIsEnd() {
			attrTag, err := d.ReadByte()
			require.NoError(t, err)
			n, err := d.ReadUint16()
			require.NoError(t, err)
			payload, err := d.ReadBytes(int(n))
			require.NoError(t, err)
			it.attrs = append(it.attrs, decodedAttr{tag: attrTag, payload: payload})
		}
		require.NoError(t, d.CloseNode())
		items = append(items, it)
	}

	require.NoError(t, d.CloseNode()) // root
	return version, items
}

func findAttr(attrs []decodedAttr, tag byte) (decodedAttr, bool) {
	for _, a := range attrs {
		if a.tag == tag {
			return a, true
		}
	}
	return decodedAttr{}, false
}

func TestWriteEmptyCatalog(t *testing.T) {
	data, err := Write(map[uint16]mapforge.ItemType{})
	require.NoError(t, err)

	_, items := decodeForTest(t, data)
	assert.Empty(t, items)
}

func TestWriteSingleItemRoundTrip(t *testing.T) {
	items := map[uint16]mapforge.ItemType{
		100: {TypeID: 100, Name: "Longsword", Group: mapforge.GroupWeapon, Cumulative: false},
	}
	data, err := Write(items)
	require.NoError(t, err)

	_, decoded := decodeForTest(t, data)
	require.Len(t, decoded, 1)

	it := decoded[0]
	assert.Equal(t, byte(mapforge.GroupWeapon), it.group)
	assert.Zero(t, it.flags)

	serverID, ok := findAttr(it.attrs, attrServerID)
	require.True(t, ok)
	assert.Equal(t, []byte{100, 0}, serverID.payload)

	name, ok := findAttr(it.attrs, attrName)
	require.True(t, ok)
	assert.Equal(t, "Longsword", string(name.payload))
}

func TestWriteEscapeHeavyName(t *testing.T) {
	// A name containing every framing byte value, to exercise the escape
	// rule through the length-prefixed attribute path end-to-end.
	name := string([]byte{0xFD, 0xFE, 0xFF, 'A'})
	items := map[uint16]mapforge.ItemType{
		1: {TypeID: 1, Name: name, Group: mapforge.GroupNone},
	}
	data, err := Write(items)
	require.NoError(t, err)

	_, decoded := decodeForTest(t, data)
	require.Len(t, decoded, 1)

	attr, ok := findAttr(decoded[0].attrs, attrName)
	require.True(t, ok)
	assert.Equal(t, []byte(name), attr.payload)
}

func TestWriteDisguisedClientID(t *testing.T) {
	items := map[uint16]mapforge.ItemType{
		50: {TypeID: 50, Name: "Disguised Chest", Group: mapforge.GroupContainer, DisguiseTarget: 3639},
	}
	data, err := Write(items)
	require.NoError(t, err)

	_, decoded := decodeForTest(t, data)
	clientID, ok := findAttr(decoded[0].attrs, attrClientID)
	require.True(t, ok)
	assert.Equal(t, []byte{0x37, 0x0E}, clientID.payload) // 3639 little-endian
}

func TestWriteCumulativeSetsStackableFlag(t *testing.T) {
	items := map[uint16]mapforge.ItemType{
		1: {TypeID: 1, Name: "Gold Coin", Cumulative: true},
	}
	data, err := Write(items)
	require.NoError(t, err)

	_, decoded := decodeForTest(t, data)
	assert.Equal(t, mapforge.FlagStackable, decoded[0].flags)
}

func TestWriteSkipsEmptyNamedItems(t *testing.T) {
	items := map[uint16]mapforge.ItemType{
		1: {TypeID: 1, Name: "Torch"},
		2: {TypeID: 2, Name: ""},
	}
	data, err := Write(items)
	require.NoError(t, err)

	_, decoded := decodeForTest(t, data)
	require.Len(t, decoded, 1)
	name, ok := findAttr(decoded[0].attrs, attrName)
	require.True(t, ok)
	assert.Equal(t, "Torch", string(name.payload))
}

func TestWriteSortsItemsByTypeID(t *testing.T) {
	items := map[uint16]mapforge.ItemType{
		30: {TypeID: 30, Name: "Thirty"},
		10: {TypeID: 10, Name: "Ten"},
		20: {TypeID: 20, Name: "Twenty"},
	}
	data, err := Write(items)
	require.NoError(t, err)

	_, decoded := decodeForTest(t, data)
	require.Len(t, decoded, 3)
	ids := make([]uint16, len(decoded))
	for i, it := range decoded {
		sid, _ := findAttr(it.attrs, attrServerID)
		ids[i] = uint16(sid.payload[0]) | uint16(sid.payload[1])<<8
	}
	assert.Equal(t, []uint16{10, 20, 30}, ids)
}
