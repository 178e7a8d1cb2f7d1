// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package multiparent

import (
	"bytes"
	"strconv"

	"github.com/mpknit/mpknit/internal/base"
)

// The patch format is line oriented and part of the stored data, so it must
// round-trip byte for byte:
//
//	i <N>\n        literal hunk header, followed by N verbatim lines and a
//	               single blank terminator line
//	c <parent> <parent_pos> <child_pos> <num_lines>\n
//
// Hunks appear in reconstruction order; the stream has no end marker.

func (t NewText) appendPatch(dst []byte) []byte {
	dst = append(dst, 'i', ' ')
	dst = strconv.AppendInt(dst, int64(len(t.Lines)), 10)
	dst = append(dst, '\n')
	for _, line := range t.Lines {
		dst = append(dst, line...)
	}
	return append(dst, '\n')
}

func (t ParentText) appendPatch(dst []byte) []byte {
	dst = append(dst, 'c', ' ')
	dst = strconv.AppendInt(dst, int64(t.Parent), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(t.ParentPos), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(t.ChildPos), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(t.NumLines), 10)
	return append(dst, '\n')
}

// AppendPatch appends the diff's serialized patch to dst and returns the
// extended slice.
func (d Diff) AppendPatch(dst []byte) []byte {
	for _, h := range d.Hunks {
		dst = h.appendPatch(dst)
	}
	return dst
}

// Patch returns the diff's serialized patch.
func (d Diff) Patch() []byte {
	return d.AppendPatch(nil)
}

// PatchLen returns len(d.Patch()) without building the patch.
func (d Diff) PatchLen() int {
	n := 0
	for _, h := range d.Hunks {
		switch h := h.(type) {
		case NewText:
			n += 2 + intLen(len(h.Lines)) + 1 // "i N\n"
			for _, line := range h.Lines {
				n += len(line)
			}
			n++ // terminator
		case ParentText:
			n += 2 + intLen(h.Parent) + 1 + intLen(h.ParentPos) +
				1 + intLen(h.ChildPos) + 1 + intLen(h.NumLines) + 1
		}
	}
	return n
}

func intLen(v int) int {
	n := 1
	if v < 0 {
		v = -v
		n++
	}
	for v >= 10 {
		v /= 10
		n++
	}
	return n
}

// ParsePatch parses a serialized patch back into a Diff. Errors identify the
// offending line (1-based) and are marked as corruption.
func ParsePatch(patch []byte) (Diff, error) {
	var d Diff
	lineNum := 0
	for len(patch) > 0 {
		lineNum++
		line := nextLine(&patch)
		switch line[0] {
		case 'i':
			n, ok := parseCount(line)
			if !ok {
				return Diff{}, base.CorruptionErrorf(
					"mpknit: malformed patch: bad literal header %q at line %d",
					string(bytes.TrimSuffix(line, []byte{'\n'})), lineNum)
			}
			lines := make([]string, 0, n)
			for i := 0; i < n; i++ {
				lineNum++
				if len(patch) == 0 {
					return Diff{}, base.CorruptionErrorf(
						"mpknit: malformed patch: truncated literal hunk at line %d", lineNum)
				}
				lines = append(lines, string(nextLine(&patch)))
			}
			// The serializer's blank terminator guarantees the final literal
			// line we just read carries a newline that is not part of the
			// text; strip it. If the original line did end in a newline, the
			// terminator arrives as a separate blank line below and restores
			// it.
			last := lines[n-1]
			if last[len(last)-1] != '\n' {
				return Diff{}, base.CorruptionErrorf(
					"mpknit: malformed patch: unterminated literal hunk at line %d", lineNum)
			}
			lines[n-1] = last[:len(last)-1]
			d.Hunks = append(d.Hunks, NewText{Lines: lines})
		case '\n':
			nt, ok := lastNewText(d.Hunks)
			if !ok {
				return Diff{}, base.CorruptionErrorf(
					"mpknit: malformed patch: stray blank line at line %d", lineNum)
			}
			nt.Lines[len(nt.Lines)-1] += "\n"
		case 'c':
			pt, ok := parseCopy(line)
			if !ok {
				return Diff{}, base.CorruptionErrorf(
					"mpknit: malformed patch: bad copy hunk %q at line %d",
					string(bytes.TrimSuffix(line, []byte{'\n'})), lineNum)
			}
			d.Hunks = append(d.Hunks, pt)
		default:
			return Diff{}, base.CorruptionErrorf(
				"mpknit: malformed patch: unrecognized hunk %q at line %d",
				string(bytes.TrimSuffix(line, []byte{'\n'})), lineNum)
		}
	}
	return d, nil
}

// nextLine consumes and returns the next line of *b, including its trailing
// newline if present.
func nextLine(b *[]byte) []byte {
	i := bytes.IndexByte(*b, '\n')
	if i < 0 {
		line := *b
		*b = nil
		return line
	}
	line := (*b)[:i+1]
	*b = (*b)[i+1:]
	return line
}

func lastNewText(hunks []Hunk) (NewText, bool) {
	if len(hunks) == 0 {
		return NewText{}, false
	}
	nt, ok := hunks[len(hunks)-1].(NewText)
	if !ok || len(nt.Lines) == 0 {
		return NewText{}, false
	}
	return nt, true
}

// parseCount parses a "i <N>\n" header, requiring N >= 1.
func parseCount(line []byte) (int, bool) {
	fields := bytes.Fields(line)
	if len(fields) != 2 || string(fields[0]) != "i" {
		return 0, false
	}
	n, err := strconv.Atoi(string(fields[1]))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// parseCopy parses a "c <parent> <parent_pos> <child_pos> <num_lines>\n" line.
func parseCopy(line []byte) (ParentText, bool) {
	fields := bytes.Fields(line)
	if len(fields) != 5 || string(fields[0]) != "c" {
		return ParentText{}, false
	}
	var vals [4]int
	for i, f := range fields[1:] {
		v, err := strconv.Atoi(string(f))
		if err != nil {
			return ParentText{}, false
		}
		vals[i] = v
	}
	return ParentText{
		Parent:    vals[0],
		ParentPos: vals[1],
		ChildPos:  vals[2],
		NumLines:  vals[3],
	}, true
}
