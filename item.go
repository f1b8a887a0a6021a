// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package mapforge transforms game-server world data into the node-tree
// binary formats (OTB item database, OTBM world map) consumed by an
// independent map editor.
package mapforge

import "fmt"

// ItemGroup classifies an item type broadly; it doubles as the OTB node
// tag byte for the item's entry in the item-type database.
type ItemGroup byte

// Item group values. The numeric value is the OTB node tag for the group.
const (
	GroupNone        ItemGroup = 0x00
	GroupGround      ItemGroup = 0x01
	GroupContainer   ItemGroup = 0x02
	GroupSplash      ItemGroup = 0x03
	GroupRune        ItemGroup = 0x04
	GroupWeapon      ItemGroup = 0x05
	GroupAmmunition  ItemGroup = 0x06
	GroupArmor       ItemGroup = 0x07
	GroupTeleport    ItemGroup = 0x08
	GroupMagicField  ItemGroup = 0x09
	GroupWriteable   ItemGroup = 0x0A
	GroupKey         ItemGroup = 0x0B
	GroupFluid       ItemGroup = 0x0C
	GroupDoor        ItemGroup = 0x0D
	GroupDeprecated  ItemGroup = 0x0E
)

// StackPriority orders items within a tile's stack before the normalizer's
// final reversal (see internal/stack). Lower values sort first.
type StackPriority byte

// Stack priority values, ascending rendering order.
const (
	PriorityBank   StackPriority = 0
	PriorityClip   StackPriority = 1
	PriorityBottom StackPriority = 2
	PriorityTop    StackPriority = 3
	PriorityHeight StackPriority = 4
	PriorityLow    StackPriority = 5
)

// groupPriority maps an item group to its derived stack priority, per the
// group/priority consistency invariant in the data model.
var groupPriority = map[ItemGroup]StackPriority{
	GroupGround:     PriorityBank,
	GroupContainer:  PriorityTop,
	GroupSplash:     PriorityLow,
	GroupRune:       PriorityLow,
	GroupWeapon:     PriorityLow,
	GroupAmmunition: PriorityLow,
	GroupArmor:      PriorityLow,
	GroupTeleport:   PriorityTop,
	GroupMagicField: PriorityBottom,
	GroupWriteable:  PriorityLow,
	GroupKey:        PriorityLow,
	GroupFluid:      PriorityLow,
	GroupDoor:       PriorityTop,
	GroupDeprecated: PriorityLow,
	GroupNone:       PriorityClip,
}

// PriorityFor returns the stack priority derived from an item's group.
func PriorityFor(g ItemGroup) StackPriority {
	if p, ok := groupPriority[g]; ok {
		return p
	}
	return PriorityLow
}

// OTB flag bits, written as the node body's little-endian u32 flags word.
const (
	FlagStackable uint32 = 0x80
)

// ItemType is one catalog entry: a stable world-object type description
// shared by the OTB item database and every ItemInstance that references it.
type ItemType struct {
	TypeID         uint16
	Name           string // Latin-1 display name; empty names are skipped at emission
	Cumulative     bool   // symbolic "Cumulative" flag; drives FlagStackable
	Group          ItemGroup
	DisguiseTarget uint16 // 0 if unset; alternate sprite id (ClientID override)
	Capacity       uint16 // 0 if unset; container volume (MaxItems)
}

// Priority returns the item's derived stack priority.
func (it ItemType) Priority() StackPriority {
	return PriorityFor(it.Group)
}

// OTBFlags returns the item's OTB flags word.
func (it ItemType) OTBFlags() uint32 {
	if it.Cumulative {
		return FlagStackable
	}
	return 0
}

// ClientID returns the sprite id to write as the OTB ClientID attribute:
// the disguise target if set, otherwise the item's own type id.
func (it ItemType) ClientID() uint16 {
	if it.DisguiseTarget != 0 {
		return it.DisguiseTarget
	}
	return it.TypeID
}

// Validate checks the ItemType invariants that matter for emission.
func (it ItemType) Validate() error {
	if it.Group > GroupDeprecated {
		return fmt.Errorf("item %d: group 0x%02X out of range", it.TypeID, it.Group)
	}
	return nil
}

// TeleportDest is an absolute world position used by teleport items and
// towns.
type TeleportDest struct {
	X, Y uint16
	Z    uint8
}

// ItemInstance is one entry in a tile stack or a container's contents.
// At most one of Count/LiquidSubtype is meaningful at a time; nesting via
// Contents is only valid when the type's group is Container.
type ItemInstance struct {
	TypeID        uint16
	Count         uint8  // 0 = unset; valid range 1..255
	ActionID      uint16 // 0 = unset
	UniqueID      uint16 // 0 = unset
	Charges       uint16 // 0 = unset
	Text          string // Latin-1, may contain newlines/quotes; "" = unset
	TeleportDest  *TeleportDest
	LiquidSubtype uint8 // editor-side subtype; 0 = unset (see internal/coord)
	HasLiquid     bool  // distinguishes "liquid subtype 0" from "unset"
	Contents      []ItemInstance
}
