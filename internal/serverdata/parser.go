// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package serverdata

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/kelindar/mapforge"
	"github.com/kelindar/mapforge/internal/srcfile"
)

// Errors tallies the per-record and per-file failures ParseAll tolerated,
// per spec.md §7's MalformedRecord policy: individual bad records never
// abort a file, and bad files never abort the run.
type Errors struct {
	CatalogSkipped   int
	HouseSkipped     int
	SpawnSkipped     int
	SectorSkipped    int
	FailedCreatures  []string // filenames that failed to parse entirely
	FailedSectors    []string
}

// Catalog is the complete set of typed records recovered from one
// game-data root, ready for the normalizer/writers to consume.
type Catalog struct {
	Items      map[uint16]mapforge.ItemType
	Houses     []mapforge.House
	HouseAreas []HouseArea
	Towns      []mapforge.Town
	Creatures  map[string]Creature
	Sectors    []mapforge.Sector
	Spawns     []mapforge.SpawnRegion
	DebugEvents []DebugEvent
}

// Parser owns the srcfile cache backing one game-data root and exposes a
// single entry point that drives every textual source through its
// corresponding ParseX function. It is the typed replacement spec.md §9
// calls for: a closed set of recognized record kinds instead of the
// source's dynamic string-keyed dictionaries.
type Parser struct {
	cache   *srcfile.Cache
	Workers int // 0 = runtime.NumCPU()
}

// NewParser returns a Parser with its own file cache. workers bounds the
// sector-file parsing fan-out; 0 selects runtime.NumCPU().
func NewParser(workers int) *Parser {
	return &Parser{cache: &srcfile.Cache{}, Workers: workers}
}

// ParseAll reads every source under root and returns the aggregated
// Catalog. It only returns an error for spec.md §7's ConfigurationMissing
// cases: the object catalog is mandatory and its absence is fatal. Every
// other source's absence or malformed content degrades gracefully into
// Errors counters.
func (p *Parser) ParseAll(root string) (*Catalog, Errors, error) {
	var errs Errors
	cat := &Catalog{
		Items:     make(map[uint16]mapforge.ItemType),
		Creatures: make(map[string]Creature),
	}

	objText, err := p.cache.Get(filepath.Join(root, "dat", "objects.srv")).Text()
	if err != nil {
		return nil, errs, fmt.Errorf("serverdata: mandatory object catalog unavailable: %w", err)
	}
	catRes := ParseCatalog(objText)
	cat.Items = catRes.Items
	errs.CatalogSkipped = catRes.Skipped

	if text, err := p.cache.Get(filepath.Join(root, "dat", "houses.dat")).Text(); err == nil {
		houseRes := ParseHouses(text)
		cat.Houses = houseRes.Houses
		errs.HouseSkipped = houseRes.Skipped
	}

	if text, err := p.cache.Get(filepath.Join(root, "dat", "houseareas.dat")).Text(); err == nil {
		cat.HouseAreas = ParseHouseAreas(text)
	}

	depotOf := make(map[string]int, len(cat.HouseAreas))
	for _, ha := range cat.HouseAreas {
		depotOf[ha.Name] = ha.DepotID
	}

	var fromHome, fromMarks []mapforge.Town
	if text, err := p.cache.Get(filepath.Join(root, "dat", "moveuse.dat")).Text(); err == nil {
		fromHome = ParseHometeleporters(text, depotOf)
	}
	if text, err := p.cache.Get(filepath.Join(root, "dat", "map.dat")).Text(); err == nil {
		fromMarks = ParseTownMarks(text, depotOf)
	}
	cat.Towns = MergeTowns(fromHome, fromMarks)

	if text, err := p.cache.Get(filepath.Join(root, "dat", "monster.db")).Text(); err == nil {
		spawns, skipped := ParseSpawnFile(text)
		cat.Spawns = spawns
		errs.SpawnSkipped = skipped
	}

	p.parseCreatures(root, "mon", "*.mon", cat, &errs)
	p.parseCreatures(root, "npc", "*.npc", cat, &errs)

	if err := p.parseSectors(root, cat, &errs); err != nil {
		return nil, errs, err
	}

	return cat, errs, nil
}

func (p *Parser) parseCreatures(root, dir, pattern string, cat *Catalog, errs *Errors) {
	matches, err := filepath.Glob(filepath.Join(root, dir, pattern))
	if err != nil {
		return
	}
	sort.Strings(matches)
	for _, path := range matches {
		text, err := p.cache.Get(path).Text()
		if err != nil {
			errs.FailedCreatures = append(errs.FailedCreatures, path)
			continue
		}
		c, ok := ParseCreatureFile(filepath.Base(path), text)
		if !ok {
			errs.FailedCreatures = append(errs.FailedCreatures, path)
			continue
		}
		cat.Creatures[c.ID] = c
	}
}

// parseSectors fans sector-file parsing out across goroutines (bounded by
// Workers), gathers the results, then sorts by filename before returning
// so downstream stages see deterministic ordering regardless of goroutine
// scheduling, per spec.md §5's concurrency contract.
func (p *Parser) parseSectors(root string, cat *Catalog, errs *Errors) error {
	matches, err := filepath.Glob(filepath.Join(root, "map", "*.sec"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(matches) {
		workers = len(matches)
	}
	if workers < 1 {
		workers = 1
	}

	type result struct {
		path    string
		sector  mapforge.Sector
		events  []DebugEvent
		skipped int
		ok      bool
	}
	results := make([]result, len(matches))

	jobs := make(chan int, len(matches))
	for i := range matches {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := matches[i]
				text, err := p.cache.Get(path).Text()
				if err != nil {
					results[i] = result{path: path}
					continue
				}
				sec, events, skipped := ParseSectorFile(path, text)
				results[i] = result{path: path, sector: sec, events: events, skipped: skipped, ok: true}
			}
		}()
	}
	wg.Wait()

	for _, r := range results {
		if !r.ok {
			errs.FailedSectors = append(errs.FailedSectors, r.path)
			continue
		}
		cat.Sectors = append(cat.Sectors, r.sector)
		cat.DebugEvents = append(cat.DebugEvents, r.events...)
		errs.SectorSkipped += r.skipped
	}
	return nil
}

// Close releases every memory-mapped source file this Parser opened.
func (p *Parser) Close() {
	p.cache.CloseAll()
}
