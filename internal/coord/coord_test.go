// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnpackFixedValue(t *testing.T) {
	pos := Unpack(2147744263)
	assert.Equal(t, uint16(24576+((uint32(2147744263)>>18)&0x3FFF)), pos.X)
	assert.Equal(t, uint16(24576+((uint32(2147744263)>>4)&0x3FFF)), pos.Y)
	assert.Equal(t, uint8(2147744263&0x0F), pos.Z)
}

func TestPackUnpackRoundTrip(t *testing.T) {
	samples := []int32{0, 1, 1 << 10, 1 << 17, 2147744263, int32(uint32(0xFFFFFFFF))}
	for _, p := range samples {
		pos := Unpack(p)
		got := Pack(pos)
		// the x:14, y:14 and z:4 fields together cover all 32 bits without
		// overlap; mask both sides identically before compare.
		want := uint32(p) & ((0x3FFF << 18) | (0x3FFF << 4) | 0x0F)
		assert.Equal(t, want, uint32(got))
	}
}

func TestLiquidTableInjective(t *testing.T) {
	seen := make(map[uint8]uint8)
	for code := uint8(0); code <= 12; code++ {
		out := TranslateLiquid(code)
		for k, v := range seen {
			if v == out {
				t.Fatalf("liquid table not injective: codes %d and %d both map to %d", k, code, out)
			}
		}
		seen[code] = out
	}
}

func TestLiquidUnknownPassesThrough(t *testing.T) {
	assert.Equal(t, uint8(200), TranslateLiquid(200))
}

func TestLiquidKnownMappings(t *testing.T) {
	cases := map[uint8]uint8{
		0: 0, 1: 1, 2: 15, 3: 3, 4: 19, 5: 2, 6: 4,
		7: 11, 8: 13, 9: 6, 10: 7, 11: 10, 12: 5,
	}
	for in, want := range cases {
		assert.Equal(t, want, TranslateLiquid(in))
	}
}
