// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package stack implements the tile-stack normalizer: it reorders a tile's
// item list from "server order" into the order the map editor expects.
package stack

import "sort"

// PriorityLookup resolves a type id to its stack priority. ok is false when
// the type id is not present in the catalog. An unresolved item is still
// sorted by the priority value the lookup returned alongside ok=false; only
// when no item in the list resolves is the input order kept unchanged.
type PriorityLookup func(typeID uint16) (priority byte, ok bool)

// indexed is the per-item metadata Normalize computes; callers pass their
// own instance type plus an accessor, via Normalize's generic parameter.
type indexed struct {
	pos      int
	priority byte
	resolved bool
}

// Normalize reorders items by the rule in the design: stable-sort by
// ascending stack priority (ties keep source order), then reverse the
// entire result. When lookup never resolves a priority for any item,
// the items are returned in their original input order (no priority
// table available).
func Normalize[T any](items []T, typeIDOf func(T) uint16, lookup PriorityLookup) []T {
	if len(items) == 0 {
		return items
	}

	meta := make([]indexed, len(items))
	anyResolved := false
	for i, it := range items {
		p, ok := lookup(typeIDOf(it))
		meta[i] = indexed{pos: i, priority: p, resolved: ok}
		if ok {
			anyResolved = true
		}
	}

	if !anyResolved {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return meta[order[a]].priority < meta[order[b]].priority
	})

	out := make([]T, len(items))
	for i, srcIdx := range order {
		// place in reverse: the stable-sorted item at position i ends up
		// at position len-1-i after the whole-list reversal.
		out[len(items)-1-i] = items[srcIdx]
	}
	return out
}
