// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package multiparent implements the multi-parent delta model of the content
// store: a child text is represented as an ordered sequence of hunks, each
// either literal new lines or a copy of a line range from one of the child's
// parent texts. Hunks reference parents by index only, so a diff can be
// stored and later reconstructed against parent texts resolved elsewhere.
package multiparent

import (
	"github.com/mpknit/mpknit/internal/lineseq"
)

// Hunk is one instruction of a multi-parent diff. Concatenating the lines
// contributed by a diff's hunks, in order, reconstructs the child text.
type Hunk interface {
	appendPatch(dst []byte) []byte
}

// NewText is a hunk of literal lines not copied from any parent. The builder
// never emits an empty NewText.
type NewText struct {
	Lines []string
}

// ParentText copies NumLines lines starting at ParentPos from parent number
// Parent, placed at ChildPos in the child text. NumLines is always positive
// in a built diff.
type ParentText struct {
	Parent    int
	ParentPos int
	ChildPos  int
	NumLines  int
}

var _ Hunk = NewText{}
var _ Hunk = ParentText{}

// Diff is a multi-parent diff: an ordered sequence of hunks. A Diff is
// immutable once built and safe for concurrent read-only use.
type Diff struct {
	Hunks []Hunk
}

// FromLines builds the diff of text against the given parent line sequences.
//
// The builder walks the child text line by line, keeping one monotonic cursor
// into each parent's matching blocks. At each position the parent offering
// the longest remaining match wins; ties go to the lowest parent index (the
// comparison only replaces the best candidate on strict improvement). This
// greedy choice is not a globally optimal covering, but it is part of the
// stored format: the same inputs must always produce the same hunks.
func FromLines(text []string, parents [][]string) Diff {
	blocks := make([][]lineseq.Match, len(parents))
	for p, parent := range parents {
		blocks[p] = lineseq.MatchingBlocks(parent, text)
	}
	cursor := make([]int, len(parents))

	var hunks []Hunk
	var pending []string
	curLine := 0
	for curLine < len(text) {
		var best ParentText
		found := false
		for p := range parents {
			bl := blocks[p]
			// Skip blocks that end at or before curLine. The cursor never
			// moves backwards, even across iterations of the outer walk.
			for cursor[p] < len(bl) && bl[cursor[p]].B+bl[cursor[p]].Size <= curLine {
				cursor[p]++
			}
			if cursor[p] >= len(bl) {
				continue
			}
			m := bl[cursor[p]]
			if m.B > curLine {
				continue
			}
			// Trim the block's start to curLine.
			offset := curLine - m.B
			n := m.Size - offset
			if n == 0 {
				continue
			}
			if !found || n > best.NumLines {
				best = ParentText{
					Parent:    p,
					ParentPos: m.A + offset,
					ChildPos:  curLine,
					NumLines:  n,
				}
				found = true
			}
		}
		if !found {
			pending = append(pending, text[curLine])
			curLine++
			continue
		}
		if len(pending) > 0 {
			hunks = append(hunks, NewText{Lines: pending})
			pending = nil
		}
		hunks = append(hunks, best)
		curLine += best.NumLines
	}
	if len(pending) > 0 {
		hunks = append(hunks, NewText{Lines: pending})
	}
	return Diff{Hunks: hunks}
}

// FromText builds the diff of a text against parent texts, splitting each
// into newline-terminated lines first.
func FromText(text string, parents ...string) Diff {
	parentLines := make([][]string, len(parents))
	for i := range parents {
		parentLines[i] = lineseq.SplitLines(parents[i])
	}
	return FromLines(lineseq.SplitLines(text), parentLines)
}

// NumLines returns the number of lines in the child text the diff encodes.
func (d Diff) NumLines() int {
	extra := 0
	for i := len(d.Hunks) - 1; i >= 0; i-- {
		switch h := d.Hunks[i].(type) {
		case ParentText:
			return h.ChildPos + h.NumLines + extra
		case NewText:
			extra += len(h.Lines)
		}
	}
	return extra
}

// IsSnapshot reports whether the diff is effectively a fulltext: a single
// literal hunk with no parent copies.
func (d Diff) IsSnapshot() bool {
	if len(d.Hunks) != 1 {
		return false
	}
	_, ok := d.Hunks[0].(NewText)
	return ok
}

// MatchingBlocks returns the copy ranges the diff holds against the given
// parent, in the matching-block shape used by the sequence matcher: ascending
// by child position, terminated by a zero-size sentinel at (parentLen,
// NumLines). A store layer can seed a future diff against the child with
// these instead of re-matching.
func (d Diff) MatchingBlocks(parent, parentLen int) []lineseq.Match {
	var blocks []lineseq.Match
	for _, h := range d.Hunks {
		pt, ok := h.(ParentText)
		if !ok || pt.Parent != parent {
			continue
		}
		blocks = append(blocks, lineseq.Match{A: pt.ParentPos, B: pt.ChildPos, Size: pt.NumLines})
	}
	return append(blocks, lineseq.Match{A: parentLen, B: d.NumLines(), Size: 0})
}

// Range describes one hunk in child-line coordinates, for consumers that
// resolve parent references themselves (such as the versioned-file
// reconstructor). Start and End bound the child lines the hunk covers.
type Range struct {
	Start, End int
	// Lines holds the literal lines of a NewText hunk; it is nil for a copy.
	Lines []string
	// Parent, ParentStart and ParentEnd identify the copied parent range when
	// Lines is nil.
	Parent      int
	ParentStart int
	ParentEnd   int
}

// Ranges returns the diff's hunks as Ranges.
func (d Diff) Ranges() []Range {
	ranges := make([]Range, 0, len(d.Hunks))
	start := 0
	for _, h := range d.Hunks {
		var r Range
		switch h := h.(type) {
		case NewText:
			r = Range{Start: start, End: start + len(h.Lines), Lines: h.Lines}
		case ParentText:
			// The copy hunk's own child position is authoritative.
			r = Range{
				Start:       h.ChildPos,
				End:         h.ChildPos + h.NumLines,
				Parent:      h.Parent,
				ParentStart: h.ParentPos,
				ParentEnd:   h.ParentPos + h.NumLines,
			}
		}
		ranges = append(ranges, r)
		start = r.End
	}
	return ranges
}
