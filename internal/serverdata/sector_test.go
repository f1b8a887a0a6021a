// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package serverdata

import (
	"testing"

	"github.com/kelindar/mapforge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSectorFilename(t *testing.T) {
	sx, sy, z, ok := ParseSectorFilename("0032-0015-07.sec")
	require.True(t, ok)
	assert.Equal(t, 32, sx)
	assert.Equal(t, 15, sy)
	assert.Equal(t, 7, z)
}

func TestParseSectorFilenameRejectsMalformed(t *testing.T) {
	_, _, _, ok := ParseSectorFilename("bogus.sec")
	assert.False(t, ok)
}

func TestParseSectorFileNestedContainer(t *testing.T) {
	text := `0-0: Content={2547 DisguiseTarget=3639 Capacity=8 Content={3031, 3031}}`

	sec, _, skipped := ParseSectorFile("0000-0000-07.sec", text)
	require.Equal(t, 0, skipped)
	require.Len(t, sec.Tiles, 1)

	tile := sec.Tiles[0]
	require.Len(t, tile.Items, 1)

	chest := tile.Items[0]
	assert.EqualValues(t, 2547, chest.TypeID)
	require.Len(t, chest.Contents, 2)
	assert.EqualValues(t, 3031, chest.Contents[0].TypeID)
	assert.EqualValues(t, 3031, chest.Contents[1].TypeID)
}

func TestParseSectorFilePackedTeleport(t *testing.T) {
	text := `10-20: Content={1387 AbsTeleportDestination=2147744263}`

	sec, events, skipped := ParseSectorFile("0000-0000-07.sec", text)
	require.Equal(t, 0, skipped)
	require.Len(t, sec.Tiles, 1)

	item := sec.Tiles[0].Items[0]
	require.NotNil(t, item.TeleportDest)
	const raw uint32 = 2147744263
	assert.Equal(t, uint16(24576+((raw>>18)&0x3FFF)), item.TeleportDest.X)
	assert.Equal(t, uint16(24576+((raw>>4)&0x3FFF)), item.TeleportDest.Y)
	assert.Equal(t, uint8(raw&0x0F), item.TeleportDest.Z)

	require.Len(t, events, 1)
	assert.Equal(t, "AbsTeleportDestination", events[0].Attribute)
}

func TestParseSectorFileLiquidMilk(t *testing.T) {
	text := `5-5: Content={2006 ContainerLiquidType=9}`

	sec, _, skipped := ParseSectorFile("0000-0000-07.sec", text)
	require.Equal(t, 0, skipped)

	item := sec.Tiles[0].Items[0]
	assert.True(t, item.HasLiquid)
	assert.EqualValues(t, 6, item.LiquidSubtype)
}

func TestParseSectorFileTileFlags(t *testing.T) {
	text := `1-1: Refresh, ProtectionZone Content={100}`

	sec, _, _ := ParseSectorFile("0000-0000-07.sec", text)
	require.Len(t, sec.Tiles, 1)
	assert.NotZero(t, sec.Tiles[0].Flags&mapforge.TileFlagRefresh)
	assert.NotZero(t, sec.Tiles[0].Flags&mapforge.TileFlagProtectionZone)
}

func TestParseSectorFileAbsoluteCoordinates(t *testing.T) {
	text := `3-4: Content={100}`

	sec, _, _ := ParseSectorFile("0002-0001-07.sec", text)
	require.Len(t, sec.Tiles, 1)
	assert.Equal(t, sec.Tiles[0].X, uint16(2*32+3))
	assert.Equal(t, sec.Tiles[0].Y, uint16(1*32+4))
}

func TestParseSectorFileSkipsMalformedLines(t *testing.T) {
	text := "this is not a valid line\n0-0: Content={100}"

	sec, _, skipped := ParseSectorFile("0000-0000-07.sec", text)
	assert.Equal(t, 1, skipped)
	require.Len(t, sec.Tiles, 1)
}

func TestParseSectorFileDiscardedKeysNotLogged(t *testing.T) {
	text := `0-0: Content={100 RemainingExpireTime=500 SavedExpireTime=200}`

	_, events, _ := ParseSectorFile("0000-0000-07.sec", text)
	assert.Empty(t, events)
}

func TestParseSectorFileDepthGuard(t *testing.T) {
	spec := "1"
	for i := 0; i < maxContainerDepth+5; i++ {
		spec = "2 Content={" + spec + "}"
	}
	text := "0-0: Content={" + spec + "}"

	// Deeply nested content beyond the guard drops the offending innermost
	// item but never panics or aborts the whole file.
	assert.NotPanics(t, func() {
		ParseSectorFile("0000-0000-07.sec", text)
	})
}

func TestExtractBracedQuoteAware(t *testing.T) {
	inner, rest, found := extractBraced(`Content={100 String="a } b"} tail`, "Content")
	require.True(t, found)
	assert.Equal(t, `100 String="a } b"`, inner)
	assert.Equal(t, " tail", rest)
}

func TestExtractQuotedStringEscapes(t *testing.T) {
	value, rest, found := extractQuotedString(`String="he said \"hi\""`, "String")
	require.True(t, found)
	assert.Equal(t, `he said "hi"`, value)
	assert.Equal(t, "", rest)
}
