// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package multiparent_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpknit/mpknit/internal/base"
	"github.com/mpknit/mpknit/multiparent"
)

func TestPatchGolden(t *testing.T) {
	d := multiparent.FromText("a\nb\nc\nd\n", "a\nb\nx\nd\n")
	require.Equal(t, "c 0 0 0 2\ni 1\nc\n\nc 0 3 3 1\n", string(d.Patch()))
}

func TestPatchRoundTrip(t *testing.T) {
	diffs := []multiparent.Diff{
		{},
		{Hunks: []multiparent.Hunk{
			multiparent.NewText{Lines: []string{"a\n", "b\n"}},
		}},
		{Hunks: []multiparent.Hunk{
			multiparent.ParentText{Parent: 0, ParentPos: 0, ChildPos: 0, NumLines: 2},
			multiparent.NewText{Lines: []string{"c\n"}},
			multiparent.ParentText{Parent: 3, ParentPos: 17, ChildPos: 4, NumLines: 9},
		}},
		// Blank lines inside a literal hunk.
		{Hunks: []multiparent.Hunk{
			multiparent.NewText{Lines: []string{"a\n", "\n", "\n", "b\n"}},
		}},
		// A literal hunk ending in a blank line.
		{Hunks: []multiparent.Hunk{
			multiparent.NewText{Lines: []string{"a\n", "\n"}},
		}},
		// Final line without a trailing newline.
		{Hunks: []multiparent.Hunk{
			multiparent.NewText{Lines: []string{"a\n", "b"}},
		}},
		{Hunks: []multiparent.Hunk{
			multiparent.ParentText{Parent: 0, ParentPos: 1, ChildPos: 0, NumLines: 1},
			multiparent.NewText{Lines: []string{"tail"}},
		}},
	}
	for _, d := range diffs {
		parsed, err := multiparent.ParsePatch(d.Patch())
		require.NoError(t, err)
		require.Equal(t, d, parsed)
		require.Equal(t, len(d.Patch()), d.PatchLen())
	}
}

func TestPatchLen(t *testing.T) {
	d := multiparent.Diff{Hunks: []multiparent.Hunk{
		multiparent.ParentText{Parent: 10, ParentPos: 100, ChildPos: 0, NumLines: 7},
		multiparent.NewText{Lines: []string{"hello\n", "world\n"}},
	}}
	require.Equal(t, len(d.Patch()), d.PatchLen())
}

func TestParsePatchErrors(t *testing.T) {
	cases := []struct {
		name  string
		patch string
	}{
		{"bad literal count", "i x\n"},
		{"zero literal count", "i 0\n"},
		{"missing literal count", "i\n"},
		{"truncated literal hunk", "i 3\na\n"},
		{"unterminated literal hunk", "i 1\na"},
		{"stray blank line", "\n"},
		{"blank line after copy", "c 0 0 0 1\n\n"},
		{"unknown hunk", "z 1 2\n"},
		{"short copy hunk", "c 0 0 0\n"},
		{"long copy hunk", "c 0 0 0 1 2\n"},
		{"bad copy field", "c 0 zero 0 1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := multiparent.ParsePatch([]byte(tc.patch))
			require.Error(t, err)
			require.True(t, base.IsCorruptionError(err), "%v", err)
			require.Regexp(t, `line \d+`, err.Error())
		})
	}
}

func TestParsePatchEmpty(t *testing.T) {
	d, err := multiparent.ParsePatch(nil)
	require.NoError(t, err)
	require.Empty(t, d.Hunks)
}

func TestPatchApply(t *testing.T) {
	// Serialize, parse, then reconstruct against fresh parent texts: the
	// diff must not depend on the texts it was built from.
	parents := [][]string{
		{"a\n", "b\n", "x\n", "d\n"},
	}
	d := multiparent.FromLines([]string{"a\n", "b\n", "c\n", "d\n"}, parents)
	parsed, err := multiparent.ParsePatch(d.Patch())
	require.NoError(t, err)
	lines, err := parsed.Apply(parents)
	require.NoError(t, err)
	require.Equal(t, []string{"a\n", "b\n", "c\n", "d\n"}, lines)
}
