// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package serverdata

import (
	"testing"

	"github.com/kelindar/mapforge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func townsOf(name string, x uint16) []mapforge.Town {
	return []mapforge.Town{{Name: name, Temple: mapforge.TeleportDest{X: x}}}
}

func TestParseHometeleportersPrefersVariantOne(t *testing.T) {
	text := `
"Home Thais (3)"
SetStart(Obj2,[100,200,7])

"Home Thais (1)"
SetStart(Obj2,[150,250,7])
`
	towns := ParseHometeleporters(text, map[string]int{"Thais": 0})
	require.Len(t, towns, 1)
	assert.Equal(t, "Thais", towns[0].Name)
	assert.Equal(t, uint16(150), towns[0].Temple.X)
	assert.Equal(t, uint32(1), towns[0].ID)
}

func TestParseHometeleportersDepotIDPlusOne(t *testing.T) {
	text := `
"Home Carlin (1)"
SetStart(Obj2,[10,20,7])
`
	towns := ParseHometeleporters(text, map[string]int{"Carlin": 4})
	require.Len(t, towns, 1)
	assert.Equal(t, uint32(5), towns[0].ID)
}

func TestParseTownMarksFallback(t *testing.T) {
	text := `Mark = ("Ab'Dendriel",[300,400,7])`
	towns := ParseTownMarks(text, map[string]int{"Ab'Dendriel": 1})
	require.Len(t, towns, 1)
	assert.Equal(t, uint16(300), towns[0].Temple.X)
}

func TestMergeTownsPrefersHometeleporter(t *testing.T) {
	fromHome := townsOf("Thais", 150)
	fromMarks := townsOf("Thais", 999)
	merged := MergeTowns(fromHome, fromMarks)
	require.Len(t, merged, 1)
	assert.Equal(t, uint16(150), merged[0].Temple.X)
}

func TestMergeTownsAddsMarksOnly(t *testing.T) {
	fromHome := townsOf("Thais", 150)
	fromMarks := townsOf("Carlin", 999)
	merged := MergeTowns(fromHome, fromMarks)
	require.Len(t, merged, 2)
}
