// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package serverdata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDebugLogSortedByAttributeThenPosition(t *testing.T) {
	events := []DebugEvent{
		{Attribute: "Charges", SourceFile: "b.sec", AbsX: 5},
		{Attribute: "Amount", SourceFile: "a.sec", AbsX: 20},
		{Attribute: "Amount", SourceFile: "a.sec", AbsX: 10},
	}

	var buf strings.Builder
	require.NoError(t, WriteDebugLog(&buf, events))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Amount\ta.sec\t(10,"))
	assert.True(t, strings.HasPrefix(lines[1], "Amount\ta.sec\t(20,"))
	assert.True(t, strings.HasPrefix(lines[2], "Charges\tb.sec\t(5,"))
}

func TestWriteDebugLogEmpty(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteDebugLog(&buf, nil))
	assert.Empty(t, buf.String())
}
