// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package mapforge_test

import (
	"testing"

	"github.com/kelindar/mapforge"
	"github.com/kelindar/mapforge/internal/config"
	"github.com/kelindar/mapforge/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, mock.WriteGameData(dir, mock.DefaultGameData()))

	pl, err := mapforge.Open(dir, config.Default(), mapforge.XMLAux{})
	require.NoError(t, err)

	res, err := pl.Run()
	require.NoError(t, err)

	assert.NotEmpty(t, res.OTB)
	assert.NotEmpty(t, res.OTBM)
	assert.NotEmpty(t, res.HouseXML)
	assert.NotEmpty(t, res.SpawnXML)

	assert.Equal(t, 4, res.Stats.TilesWritten)
	assert.Equal(t, 4, res.Stats.ItemsWritten)
	assert.Equal(t, 3, res.Stats.CreaturesPlaced) // 2 rats + 1 vendor NPC
	assert.Empty(t, res.Stats.PlacementWarnings)
}

func TestPipelineOpenRejectsMissingRoot(t *testing.T) {
	_, err := mapforge.Open("/nonexistent/path/does-not-exist", config.Default(), nil)
	assert.Error(t, err)
}

func TestPipelineOpenRejectsMissingMapDir(t *testing.T) {
	dir := t.TempDir()
	_, err := mapforge.Open(dir, config.Default(), nil)
	assert.Error(t, err)
}

func TestPipelineRunWithoutAuxSkipsXML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, mock.WriteGameData(dir, mock.DefaultGameData()))

	pl, err := mapforge.Open(dir, config.Default(), nil)
	require.NoError(t, err)

	res, err := pl.Run()
	require.NoError(t, err)
	assert.Empty(t, res.HouseXML)
	assert.Empty(t, res.SpawnXML)
}

func TestPipelineReexportFindsNoInvalidTypes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, mock.WriteGameData(dir, mock.DefaultGameData()))

	pl, err := mapforge.Open(dir, config.Default(), nil)
	require.NoError(t, err)
	res, err := pl.Run()
	require.NoError(t, err)

	n, err := pl.ReexportInvalidTypeIDs(res.OTBM, map[uint16]bool{2000: true})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
