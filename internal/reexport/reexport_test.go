// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package reexport

import (
	"testing"

	"github.com/kelindar/mapforge"
	"github.com/kelindar/mapforge/internal/otbm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromOTBMRoundTripsTiles(t *testing.T) {
	tiles := []mapforge.Tile{
		{
			X: 100, Y: 200, Z: 7,
			Flags: mapforge.TileFlagProtectionZone,
			Items: []mapforge.ItemInstance{
				{TypeID: 100, Count: 5},
				{TypeID: 2547, Contents: []mapforge.ItemInstance{{TypeID: 3031}}},
			},
		},
		{X: 400, Y: 200, Z: 7, Items: []mapforge.ItemInstance{{TypeID: 1}}},
	}

	data, err := otbm.Write(tiles, nil, otbm.Options{})
	require.NoError(t, err)

	res, err := FromOTBM(data, nil)
	require.NoError(t, err)
	assert.Empty(t, res.InvalidTypes)

	var gotTiles []mapforge.Tile
	for _, sec := range res.Sectors {
		gotTiles = append(gotTiles, sec.Tiles...)
	}
	require.Len(t, gotTiles, 2)

	byCoord := make(map[[2]uint16]mapforge.Tile)
	for _, tl := range gotTiles {
		byCoord[[2]uint16{tl.X, tl.Y}] = tl
	}

	first, ok := byCoord[[2]uint16{100, 200}]
	require.True(t, ok)
	assert.Equal(t, mapforge.TileFlagProtectionZone, first.Flags)
	require.Len(t, first.Items, 2)
	assert.EqualValues(t, 100, first.Items[0].TypeID)
	assert.EqualValues(t, 5, first.Items[0].Count)
	require.Len(t, first.Items[1].Contents, 1)
	assert.EqualValues(t, 3031, first.Items[1].Contents[0].TypeID)
}

func TestFromOTBMDropsInvalidTypeIDsNonFatally(t *testing.T) {
	tiles := []mapforge.Tile{
		{X: 1, Y: 1, Z: 7, Items: []mapforge.ItemInstance{{TypeID: 100}, {TypeID: 999}}},
	}
	data, err := otbm.Write(tiles, nil, otbm.Options{})
	require.NoError(t, err)

	res, err := FromOTBM(data, map[uint16]bool{100: true})
	require.NoError(t, err)
	require.Len(t, res.InvalidTypes, 1)
	assert.EqualValues(t, 999, res.InvalidTypes[0])

	var gotItems int
	for _, sec := range res.Sectors {
		for _, tl := range sec.Tiles {
			gotItems += len(tl.Items)
		}
	}
	assert.Equal(t, 1, gotItems) // only the valid item survives
}

func TestFromOTBMEmptyMap(t *testing.T) {
	data, err := otbm.Write(nil, nil, otbm.Options{})
	require.NoError(t, err)

	res, err := FromOTBM(data, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Sectors)
}
