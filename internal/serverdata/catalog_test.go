// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package serverdata

import (
	"testing"

	"github.com/kelindar/mapforge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalogBasicRecord(t *testing.T) {
	text := `
TypeID = 100
Name = "Longsword"
Flags = {Weapon, Cumulative}
Attributes = {Capacity=8, DisguiseTarget=3639, Weight=10}
`
	res := ParseCatalog(text)
	require.Contains(t, res.Items, uint16(100))

	it := res.Items[100]
	assert.Equal(t, "Longsword", it.Name)
	assert.Equal(t, mapforge.GroupWeapon, it.Group)
	assert.True(t, it.Cumulative)
	assert.Equal(t, uint16(8), it.Capacity)
	assert.Equal(t, uint16(3639), it.DisguiseTarget)
}

func TestParseCatalogSkipsEmptyName(t *testing.T) {
	text := `
TypeID = 101
Flags = {Weapon}
`
	res := ParseCatalog(text)
	assert.Equal(t, 1, res.Skipped)
	assert.NotContains(t, res.Items, uint16(101))
}

func TestParseCatalogMultipleRecordsSeparatedByBlank(t *testing.T) {
	text := `
TypeID = 1
Name = "Ground Tile"
Flags = {Ground}

TypeID = 2
Name = "Chest"
Flags = {Container}
`
	res := ParseCatalog(text)
	require.Len(t, res.Items, 2)
	assert.Equal(t, mapforge.GroupGround, res.Items[1].Group)
	assert.Equal(t, mapforge.GroupContainer, res.Items[2].Group)
}

func TestParseCatalogDefaultGroupIsNone(t *testing.T) {
	text := `
TypeID = 5
Name = "Mystery Item"
`
	res := ParseCatalog(text)
	assert.Equal(t, mapforge.GroupNone, res.Items[5].Group)
}
