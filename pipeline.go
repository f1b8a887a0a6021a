// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package mapforge

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelindar/mapforge/internal/config"
	"github.com/kelindar/mapforge/internal/otb"
	"github.com/kelindar/mapforge/internal/otbm"
	"github.com/kelindar/mapforge/internal/reexport"
	"github.com/kelindar/mapforge/internal/serverdata"
	"github.com/kelindar/mapforge/internal/spawn"
	"github.com/kelindar/mapforge/internal/stack"
)

// AuxWriter emits the auxiliary collaborator outputs spec.md marks out of
// scope for the hard core (house/spawn/creature/palette XML, client
// snippets): straightforward line-oriented text emission over the same
// parsed intermediate data this Pipeline already holds. The interface
// boundary exists so cmd/mapforge can drive a complete run even though
// the Pipeline itself only guarantees the node-tree binary outputs.
type AuxWriter interface {
	WriteHouses(houses []House, towns []Town) ([]byte, error)
	WriteSpawns(regions []PlacedRegion) ([]byte, error)
}

// Stats tallies what one Pipeline.Run produced, surfaced in the final
// stdout summary per spec.md §5/§7's "all counters are surfaced" rule.
type Stats struct {
	TilesWritten       int
	ItemsWritten       int
	ContainerChildItems int
	ActionIDItems      int
	TextItems          int
	CreaturesPlaced    int
	NPCCentersShifted  int

	CatalogSkipped  int
	HouseSkipped    int
	SpawnSkipped    int
	SectorSkipped   int
	FailedCreatures []string
	FailedSectors   []string
	PlacementWarnings []string
}

// Pipeline holds the game-data root and tunable configuration, and drives
// the parse -> item-db -> normalize -> map -> placement -> aux sequence
// described in spec.md §4.8. It replaces the teacher's top-level SDK:
// same "one struct holding a root path plus lazily-populated state" shape,
// generalized from a random-access game-file reader into a one-shot batch
// converter.
type Pipeline struct {
	root string
	cfg  config.Config
	aux  AuxWriter
}

// Open validates that root exists and is a directory, mirroring the
// teacher's SDK.Open precondition check, and returns a Pipeline ready to
// Run. aux may be nil to skip auxiliary XML emission entirely.
func Open(root string, cfg config.Config, aux AuxWriter) (*Pipeline, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("mapforge: game-data root %q does not exist: %w", root, err)
		}
		return nil, fmt.Errorf("mapforge: failed to access game-data root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mapforge: game-data root %q is not a directory", root)
	}
	if mapDir, statErr := os.Stat(filepath.Join(root, "map")); statErr != nil || !mapDir.IsDir() {
		return nil, fmt.Errorf("mapforge: map directory missing under %q", root)
	}

	return &Pipeline{root: root, cfg: cfg, aux: aux}, nil
}

// Result is everything a completed Run produced, ready for a caller (the
// CLI) to write to disk.
type Result struct {
	OTB      []byte
	OTBM     []byte
	HouseXML []byte
	SpawnXML []byte
	DebugLog []byte
	Stats    Stats
}

// Run executes the full pipeline: parse every source, emit the item
// database, normalize and emit the world map, plan creature placement,
// and (if an AuxWriter was supplied) emit the auxiliary XML files.
func (pl *Pipeline) Run() (*Result, error) {
	parser := serverdata.NewParser(pl.cfg.SectorWorkers)
	defer parser.Close()

	cat, perrs, err := parser.ParseAll(pl.root)
	if err != nil {
		return nil, fmt.Errorf("mapforge: %w", err)
	}

	stats := Stats{
		CatalogSkipped:  perrs.CatalogSkipped,
		HouseSkipped:    perrs.HouseSkipped,
		SpawnSkipped:    perrs.SpawnSkipped,
		SectorSkipped:   perrs.SectorSkipped,
		FailedCreatures: perrs.FailedCreatures,
		FailedSectors:   perrs.FailedSectors,
	}

	otbBytes, err := otb.Write(cat.Items)
	if err != nil {
		return nil, fmt.Errorf("mapforge: writing item database: %w", err)
	}

	priority := func(typeID uint16) (byte, bool) {
		it, ok := cat.Items[typeID]
		if !ok {
			return 0, false
		}
		return byte(it.Priority()), true
	}

	var tiles []Tile
	for _, sec := range cat.Sectors {
		for _, t := range sec.Tiles {
			t.Items = stack.Normalize(t.Items, func(it ItemInstance) uint16 { return it.TypeID }, priority)
			tiles = append(tiles, t)
			stats.TilesWritten++
			countTile(&stats, t)
		}
	}

	otbmBytes, err := otbm.Write(tiles, cat.Towns, otbm.Options{
		Description: "mapforge generated map",
		SpawnFile:   "spawn.xml",
		HouseFile:   "house.xml",
	})
	if err != nil {
		return nil, fmt.Errorf("mapforge: writing world map: %w", err)
	}

	walkable := spawn.NewWalkableSet()
	for _, t := range tiles {
		if len(t.Items) > 0 {
			walkable.Mark(t.X, t.Y, t.Z)
		}
	}

	ringCap := pl.cfg.PlacementRingCap
	var placed []PlacedRegion
	for _, region := range cat.Spawns {
		pr, err := spawn.Plan(walkable, region, ringCap)
		if err != nil {
			// Under-filled but non-fatal: proceed with whatever the planner
			// managed to place, per spec.md §4.6 step 2.
			stats.PlacementWarnings = append(stats.PlacementWarnings, err.Error())
		}
		placed = append(placed, pr)
		stats.CreaturesPlaced += len(pr.Placed)
		if region.IsNPC && (pr.ShiftedX != region.CenterX || pr.ShiftedY != region.CenterY) {
			stats.NPCCentersShifted++
		}
	}

	var houseXML, spawnXML []byte
	if pl.aux != nil {
		houseXML, err = pl.aux.WriteHouses(cat.Houses, cat.Towns)
		if err != nil {
			return nil, fmt.Errorf("mapforge: writing house xml: %w", err)
		}
		spawnXML, err = pl.aux.WriteSpawns(placed)
		if err != nil {
			return nil, fmt.Errorf("mapforge: writing spawn xml: %w", err)
		}
	}

	var debugBuf bytes.Buffer
	if err := serverdata.WriteDebugLog(&debugBuf, cat.DebugEvents); err != nil {
		return nil, fmt.Errorf("mapforge: writing debug log: %w", err)
	}

	return &Result{
		OTB:      otbBytes,
		OTBM:     otbmBytes,
		HouseXML: houseXML,
		SpawnXML: spawnXML,
		DebugLog: debugBuf.Bytes(),
		Stats:    stats,
	}, nil
}

func countTile(stats *Stats, t Tile) {
	for _, it := range t.Items {
		stats.ItemsWritten++
		countItem(stats, it)
	}
}

func countItem(stats *Stats, it ItemInstance) {
	if it.ActionID != 0 {
		stats.ActionIDItems++
	}
	if it.Text != "" {
		stats.TextItems++
	}
	for _, child := range it.Contents {
		stats.ContainerChildItems++
		countItem(stats, child)
	}
}

// ReexportInvalidTypeIDs runs the Sector Re-exporter against an already
// emitted OTBM stream, per spec.md §4.8/§7: the inverse direction is
// optional, but when exercised its invalid-type-id count is surfaced the
// same way as every other pipeline counter.
func (pl *Pipeline) ReexportInvalidTypeIDs(otbmBytes []byte, validTypeIDs map[uint16]bool) (int, error) {
	res, err := reexport.FromOTBM(otbmBytes, validTypeIDs)
	if err != nil {
		return 0, err
	}
	return len(res.InvalidTypes), nil
}
