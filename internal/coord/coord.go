// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package coord implements the packed-coordinate unpacker and the
// server-to-editor liquid subtype translation table.
package coord

// worldOrigin is added back to the 14-bit x/y fields extracted from a
// packed position, per the game server's absolute-coordinate convention.
const worldOrigin = 24576

// Position is an absolute world coordinate.
type Position struct {
	X, Y uint16
	Z    uint8
}

// Unpack decodes a packed i32 teleport destination into an absolute
// Position.
func Unpack(p int32) Position {
	v := uint32(p)
	return Position{
		X: uint16(((v >> 18) & 0x3FFF) + worldOrigin),
		Y: uint16(((v >> 4) & 0x3FFF) + worldOrigin),
		Z: uint8(v & 0x0F),
	}
}

// Pack is the natural inverse of Unpack, used only for round-trip testing.
func Pack(pos Position) int32 {
	x := uint32(pos.X-worldOrigin) & 0x3FFF
	y := uint32(pos.Y-worldOrigin) & 0x3FFF
	z := uint32(pos.Z) & 0x0F
	return int32(x<<18 | y<<4 | z)
}

// liquidTable is the fixed server-to-editor liquid subtype mapping.
var liquidTable = map[uint8]uint8{
	0:  0,
	1:  1,  // water
	2:  15, // wine
	3:  3,  // beer
	4:  19, // mud
	5:  2,  // blood
	6:  4,  // slime
	7:  11, // oil
	8:  13, // urine
	9:  6,  // milk
	10: 7,  // manafluid
	11: 10, // lifefluid
	12: 5,  // lemonade
}

// TranslateLiquid maps a server liquid subtype code to the editor's code.
// Codes outside the fixed 13-entry table pass through unchanged.
func TranslateLiquid(serverCode uint8) uint8 {
	if v, ok := liquidTable[serverCode]; ok {
		return v
	}
	return serverCode
}
