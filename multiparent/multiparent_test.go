// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package multiparent_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"

	"github.com/mpknit/mpknit/internal/lineseq"
	"github.com/mpknit/mpknit/multiparent"
)

func TestBuildDataDriven(t *testing.T) {
	datadriven.RunTest(t, "testdata/build", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "build":
			sections := strings.Split(td.Input, "\n--\n")
			child := lineseq.SplitLines(ensureNewline(sections[0]))
			var parents [][]string
			for _, s := range sections[1:] {
				parents = append(parents, lineseq.SplitLines(ensureNewline(s)))
			}
			diff := multiparent.FromLines(child, parents)

			var buf strings.Builder
			for _, h := range diff.Hunks {
				switch h := h.(type) {
				case multiparent.NewText:
					fmt.Fprintf(&buf, "new %d", len(h.Lines))
					for _, line := range h.Lines {
						fmt.Fprintf(&buf, " %q", line)
					}
					buf.WriteByte('\n')
				case multiparent.ParentText:
					fmt.Fprintf(&buf, "copy parent=%d parent_pos=%d child_pos=%d num_lines=%d\n",
						h.Parent, h.ParentPos, h.ChildPos, h.NumLines)
				}
			}

			// Every built diff must reconstruct its input.
			applied, err := diff.Apply(parents)
			require.NoError(t, err)
			require.Equal(t, child, applied)
			require.Equal(t, len(child), hunkLineSum(diff))
			return buf.String()

		default:
			td.Fatalf(t, "unknown command: %s", td.Cmd)
			return ""
		}
	})
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func hunkLineSum(d multiparent.Diff) int {
	n := 0
	for _, h := range d.Hunks {
		switch h := h.(type) {
		case multiparent.NewText:
			n += len(h.Lines)
		case multiparent.ParentText:
			n += h.NumLines
		}
	}
	return n
}

func TestBuildNoParents(t *testing.T) {
	require.Empty(t, multiparent.FromLines(nil, nil).Hunks)

	text := []string{"a\n", "b\n", "c\n"}
	d := multiparent.FromLines(text, nil)
	require.Equal(t, []multiparent.Hunk{multiparent.NewText{Lines: text}}, d.Hunks)
	require.True(t, d.IsSnapshot())
}

func TestBuildIdenticalParent(t *testing.T) {
	text := []string{"a\n", "b\n", "c\n", "d\n"}
	d := multiparent.FromLines(text, [][]string{text})
	require.Equal(t, []multiparent.Hunk{
		multiparent.ParentText{Parent: 0, ParentPos: 0, ChildPos: 0, NumLines: 4},
	}, d.Hunks)
	require.False(t, d.IsSnapshot())
}

func TestBuildConcrete(t *testing.T) {
	child := []string{"a\n", "b\n", "c\n", "d\n"}
	parent := []string{"a\n", "b\n", "x\n", "d\n"}
	d := multiparent.FromLines(child, [][]string{parent})
	require.Equal(t, []multiparent.Hunk{
		multiparent.ParentText{Parent: 0, ParentPos: 0, ChildPos: 0, NumLines: 2},
		multiparent.NewText{Lines: []string{"c\n"}},
		multiparent.ParentText{Parent: 0, ParentPos: 3, ChildPos: 3, NumLines: 1},
	}, d.Hunks)
	require.Equal(t, 4, d.NumLines())
}

func TestBuildTieBreak(t *testing.T) {
	// Both parents offer an equally long match at line 0; the lowest parent
	// index must win.
	child := []string{"a\n", "b\n"}
	d := multiparent.FromLines(child, [][]string{
		{"a\n", "z\n"},
		{"a\n", "y\n"},
	})
	require.Equal(t, multiparent.ParentText{Parent: 0, ParentPos: 0, ChildPos: 0, NumLines: 1},
		d.Hunks[0])
}

func TestBuildPrefersLongerMatch(t *testing.T) {
	child := []string{"1\n", "2\n", "3\n", "4\n", "5\n"}
	d := multiparent.FromLines(child, [][]string{
		{"1\n", "2\n"},
		{"2\n", "3\n", "4\n", "5\n"},
	})
	require.Equal(t, []multiparent.Hunk{
		multiparent.ParentText{Parent: 0, ParentPos: 0, ChildPos: 0, NumLines: 2},
		multiparent.ParentText{Parent: 1, ParentPos: 1, ChildPos: 2, NumLines: 3},
	}, d.Hunks)
}

// vocabulary for randomized texts; distinct lines so matches are meaningful.
var vocab = func() []string {
	words := []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
		"golf", "hotel", "india", "juliett", "kilo", "lima",
	}
	lines := make([]string, len(words))
	for i, w := range words {
		lines[i] = w + "\n"
	}
	return lines
}()

func randomLines(rng *rand.Rand, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = vocab[rng.Intn(len(vocab))]
	}
	return lines
}

func TestBuildApplyRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(20260831))
	for i := 0; i < 200; i++ {
		numParents := rng.Intn(4)
		parents := make([][]string, numParents)
		for p := range parents {
			parents[p] = randomLines(rng, rng.Intn(30))
		}
		// Children are built from parent slices and literal runs so that
		// there is real structure to find.
		var child []string
		for len(child) < 40 {
			if numParents > 0 && rng.Intn(2) == 0 {
				p := parents[rng.Intn(numParents)]
				if len(p) > 0 {
					start := rng.Intn(len(p))
					end := start + rng.Intn(len(p)-start)
					child = append(child, p[start:end]...)
					continue
				}
			}
			child = append(child, randomLines(rng, 1+rng.Intn(4))...)
		}

		d := multiparent.FromLines(child, parents)
		require.Equal(t, len(child), hunkLineSum(d), "hunk coverage invariant")
		applied, err := d.Apply(parents)
		require.NoError(t, err)
		require.Equal(t, child, applied)

		// The patch form must survive a round trip as well.
		parsed, err := multiparent.ParsePatch(d.Patch())
		require.NoError(t, err)
		require.Equal(t, d, parsed)
	}
}

func TestApplyMissingParent(t *testing.T) {
	d := multiparent.Diff{Hunks: []multiparent.Hunk{
		multiparent.ParentText{Parent: 1, ParentPos: 0, ChildPos: 0, NumLines: 1},
	}}
	_, err := d.Apply([][]string{{"a\n"}})
	require.ErrorIs(t, err, multiparent.ErrMissingParent)

	d = multiparent.Diff{Hunks: []multiparent.Hunk{
		multiparent.ParentText{Parent: 0, ParentPos: 1, ChildPos: 0, NumLines: 3},
	}}
	_, err = d.Apply([][]string{{"a\n", "b\n"}})
	require.ErrorIs(t, err, multiparent.ErrMissingParent)
}

func TestNumLines(t *testing.T) {
	d := multiparent.Diff{Hunks: []multiparent.Hunk{
		multiparent.ParentText{Parent: 0, ParentPos: 0, ChildPos: 0, NumLines: 2},
		multiparent.NewText{Lines: []string{"c\n"}},
		multiparent.ParentText{Parent: 0, ParentPos: 3, ChildPos: 3, NumLines: 1},
		multiparent.NewText{Lines: []string{"e\n", "f\n"}},
	}}
	require.Equal(t, 6, d.NumLines())
	require.Equal(t, 0, multiparent.Diff{}.NumLines())
}

func TestMatchingBlocks(t *testing.T) {
	child := []string{"a\n", "b\n", "c\n", "d\n"}
	parent := []string{"a\n", "b\n", "x\n", "d\n"}
	d := multiparent.FromLines(child, [][]string{parent})
	blocks := d.MatchingBlocks(0, len(parent))
	require.Len(t, blocks, 3)
	require.Equal(t, lineseq.Match{A: 0, B: 0, Size: 2}, blocks[0])
	require.Equal(t, lineseq.Match{A: 3, B: 3, Size: 1}, blocks[1])
	require.Equal(t, lineseq.Match{A: 4, B: 4, Size: 0}, blocks[2])

	// No copies against an unknown parent: only the sentinel.
	require.Equal(t, []lineseq.Match{{A: 4, B: 4, Size: 0}}, d.MatchingBlocks(7, 4))
}

func TestFromText(t *testing.T) {
	d := multiparent.FromText("a\nb\nc\nd\n", "a\nb\nx\nd\n")
	applied, err := d.Apply([][]string{lineseq.SplitLines("a\nb\nx\nd\n")})
	require.NoError(t, err)
	require.Equal(t, "a\nb\nc\nd\n", lineseq.JoinLines(applied))
}

func TestRanges(t *testing.T) {
	d := multiparent.Diff{Hunks: []multiparent.Hunk{
		multiparent.ParentText{Parent: 0, ParentPos: 2, ChildPos: 0, NumLines: 2},
		multiparent.NewText{Lines: []string{"x\n"}},
		multiparent.ParentText{Parent: 1, ParentPos: 0, ChildPos: 3, NumLines: 4},
	}}
	require.Equal(t, []multiparent.Range{
		{Start: 0, End: 2, Parent: 0, ParentStart: 2, ParentEnd: 4},
		{Start: 2, End: 3, Lines: []string{"x\n"}},
		{Start: 3, End: 7, Parent: 1, ParentStart: 0, ParentEnd: 4},
	}, d.Ranges())
}
