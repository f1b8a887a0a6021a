// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeItem struct {
	typeID uint16
	tag    string
}

func typeIDOf(i fakeItem) uint16 { return i.typeID }

func priorityTable(m map[uint16]byte) PriorityLookup {
	return func(typeID uint16) (byte, bool) {
		p, ok := m[typeID]
		return p, ok
	}
}

func TestNormalizeStableSortThenReverse(t *testing.T) {
	items := []fakeItem{
		{1, "bank1"}, {2, "low1"}, {3, "bank2"}, {4, "top1"}, {5, "low2"},
	}
	prio := priorityTable(map[uint16]byte{1: 0, 2: 5, 3: 0, 4: 3, 5: 5})

	got := Normalize(items, typeIDOf, prio)

	// stable sort by priority ascending: [bank1(0), bank2(0), top1(3), low1(5), low2(5)]
	// reversed: [low2, low1, top1, bank2, bank1]
	want := []string{"low2", "low1", "top1", "bank2", "bank1"}
	var tags []string
	for _, it := range got {
		tags = append(tags, it.tag)
	}
	assert.Equal(t, want, tags)
}

func TestNormalizeSwapDeterminism(t *testing.T) {
	prio := priorityTable(map[uint16]byte{1: 5, 2: 5})
	a := []fakeItem{{1, "a"}, {2, "b"}}
	b := []fakeItem{{2, "b"}, {1, "a"}}

	gotA := Normalize(a, typeIDOf, prio)
	gotB := Normalize(b, typeIDOf, prio)

	// swapping two equal-priority items in the input swaps them at the
	// corresponding output positions too.
	assert.Equal(t, gotA[0].tag, gotB[1].tag)
	assert.Equal(t, gotA[1].tag, gotB[0].tag)
}

func TestNormalizeNoTableKeepsInputOrder(t *testing.T) {
	items := []fakeItem{{1, "a"}, {2, "b"}, {3, "c"}}
	got := Normalize(items, typeIDOf, priorityTable(nil))
	assert.Equal(t, items, got)
}

func TestNormalizeEmpty(t *testing.T) {
	got := Normalize([]fakeItem(nil), typeIDOf, priorityTable(nil))
	assert.Empty(t, got)
}
