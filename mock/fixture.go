// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package mock provides lightweight, in-memory-sized fixtures for tests
// that need a real (but tiny) game-data root on disk, since srcfile
// memory-maps its sources rather than accepting raw strings. The
// "materialize just enough of the real shape" approach is adapted from
// the teacher's mock.SDK, which builds an in-memory stand-in for the
// real reader instead of exercising the MUL/UOP file formats directly.
package mock

import (
	"os"
	"path/filepath"
)

// GameData is the minimal textual content of one fixture game-data root,
// exposed field-by-field so a test can tweak one source before writing.
type GameData struct {
	Objects    string
	Houses     string
	HouseAreas string
	MoveUse    string
	MapFile    string
	MonsterDB  string
	Sector     string // one .sec file, named by SectorName
	SectorName string
	Creature   string // one .mon file, named by CreatureName
	CreatureName string
	NPC        string // one .npc file, named by NPCName
	NPCName    string
}

// DefaultGameData returns a small, internally-consistent fixture: one
// item catalog entry (a container), one house, one house-area linking it
// to a depot, one Hometeleporter town, one sector file with four tiles
// referencing the catalog item, one monster and one NPC creature file, and one spawn
// region for each.
func DefaultGameData() GameData {
	return GameData{
		Objects: "TypeID = 2000\n" +
			"Name = \"Wooden Chest\"\n" +
			"Flags = {Container}\n" +
			"Attributes = {Capacity=8}\n",
		Houses: "ID = 1\n" +
			"Name = \"Thais House\"\n" +
			"RentOffset = 500\n" +
			"Area = 3\n" +
			"GuildHouse = 0\n" +
			"Exit=[100,200,7]\n",
		HouseAreas: `Area = (3, "Thais", 100000, 1)` + "\n",
		MoveUse: "-- Hometeleporters\n" +
			`Label("Home Thais (1)")` + "\n" +
			"SetStart(Obj2,[100,200,7])\n",
		MapFile:    `Mark = ("Thais",[100,200,7])` + "\n",
		MonsterDB: "RaceID = rat\n" +
			"Center=[0,0,7]\n" +
			"Radius = 3\n" +
			"Amount = 2\n" +
			"Respawn = 60\n\n" +
			"RaceID = vendor\n" +
			"Center=[2,0,7]\n" +
			"Radius = 1\n" +
			"Amount = 1\n" +
			"NPC = 1\n",
		Sector: "0-0: Content={2000 Capacity=8}\n" +
			"1-0: Content={2000}\n" +
			"0-1: Content={2000}\n" +
			"2-0: Content={2000}\n",
		SectorName: "0000-0000-07.sec",
		Creature:   "RaceNumber = 26\nOutfit = (26, 0)\n",
		CreatureName: "rat.mon",
		NPC:        "RaceNumber = 0\nOutfit = (130, 0)\n",
		NPCName:    "vendor.npc",
	}
}

// WriteGameData materializes g under dir, creating the dat/, map/, mon/,
// and npc/ subdirectories the Parser/Pipeline expect.
func WriteGameData(dir string, g GameData) error {
	dirs := []string{"dat", "map", "mon", "npc"}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return err
		}
	}

	files := map[string]string{
		filepath.Join("dat", "objects.srv"):    g.Objects,
		filepath.Join("dat", "houses.dat"):     g.Houses,
		filepath.Join("dat", "houseareas.dat"): g.HouseAreas,
		filepath.Join("dat", "moveuse.dat"):    g.MoveUse,
		filepath.Join("dat", "map.dat"):        g.MapFile,
		filepath.Join("dat", "monster.db"):     g.MonsterDB,
		filepath.Join("map", g.SectorName):     g.Sector,
		filepath.Join("mon", g.CreatureName):   g.Creature,
		filepath.Join("npc", g.NPCName):        g.NPC,
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(dir, rel), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
