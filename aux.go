// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package mapforge

import "encoding/xml"

// XMLAux is the default AuxWriter: straightforward line-oriented XML over
// the same parsed intermediate data the Pipeline already holds. spec.md
// marks this output family (houses/spawns/creatures/palette XML) out of
// scope for the hard core, so this stays on encoding/xml rather than a
// domain codec library.
type XMLAux struct{}

type xmlHouseFile struct {
	XMLName xml.Name    `xml:"houses"`
	Houses  []xmlHouse  `xml:"house"`
}

type xmlHouse struct {
	ID        uint32 `xml:"houseid,attr"`
	Name      string `xml:"name,attr"`
	EntryX    uint16 `xml:"entryx,attr"`
	EntryY    uint16 `xml:"entryy,attr"`
	EntryZ    uint8  `xml:"entryz,attr"`
	Rent      int    `xml:"rent,attr"`
	GuildHall bool   `xml:"guildhall,attr"`
	TownID    uint32 `xml:"townid,attr"`
}

// WriteHouses renders one <house> element per House. towns is accepted
// for symmetry with the house-area/town linkage spec.md describes, but
// house-to-town resolution happens upstream (Area -> HouseArea ->
// DepotID -> Town.ID); by the time a House reaches here that linkage is
// already out of scope for this non-goal XML emitter, so towns is unused.
func (XMLAux) WriteHouses(houses []House, towns []Town) ([]byte, error) {
	doc := xmlHouseFile{Houses: make([]xmlHouse, 0, len(houses))}
	for _, h := range houses {
		doc.Houses = append(doc.Houses, xmlHouse{
			ID:        h.ID,
			Name:      h.Name,
			EntryX:    h.EntryX,
			EntryY:    h.EntryY,
			EntryZ:    h.EntryZ,
			Rent:      h.Rent,
			GuildHall: h.GuildHall,
		})
	}
	return xml.MarshalIndent(doc, "", "\t")
}

type xmlSpawnFile struct {
	XMLName xml.Name    `xml:"spawns"`
	Spawns  []xmlSpawn  `xml:"spawn"`
}

type xmlSpawn struct {
	RaceID  string       `xml:"name,attr"`
	CenterX uint16       `xml:"centerx,attr"`
	CenterY uint16       `xml:"centery,attr"`
	Z       uint8        `xml:"centerz,attr"`
	Radius  int          `xml:"radius,attr"`
	Respawn int          `xml:"spawntime,attr"`
	Creatures []xmlCreature `xml:"creature"`
}

type xmlCreature struct {
	DX int `xml:"x,attr"`
	DY int `xml:"y,attr"`
}

// WriteSpawns renders one <spawn> element per PlacedRegion, with a nested
// <creature> per concrete placement offset.
func (XMLAux) WriteSpawns(regions []PlacedRegion) ([]byte, error) {
	doc := xmlSpawnFile{Spawns: make([]xmlSpawn, 0, len(regions))}
	for _, r := range regions {
		sp := xmlSpawn{
			RaceID:  r.RaceID,
			CenterX: r.ShiftedX,
			CenterY: r.ShiftedY,
			Z:       r.Z,
			Radius:  r.EmittedRadius(),
			Respawn: r.Respawn,
		}
		for _, c := range r.Placed {
			sp.Creatures = append(sp.Creatures, xmlCreature{DX: c.DX, DY: c.DY})
		}
		doc.Spawns = append(doc.Spawns, sp)
	}
	return xml.MarshalIndent(doc, "", "\t")
}
