// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package versionedfile

import (
	"github.com/mpknit/mpknit/internal/base"
	"github.com/mpknit/mpknit/multiparent"
)

// reconstructor resolves line ranges through the diff graph without
// materializing intermediate versions. Copy hunks are rewritten into range
// requests against parent versions until a request lands on a literal hunk
// or a cached fulltext.
type reconstructor struct {
	s *Store
	// cursors remembers, per version, how far into the version's ranges the
	// previous request advanced; requests within one reconstruction move
	// mostly forward, so the cursor rarely rewinds.
	cursors map[VersionID]*rangeCursor
}

type rangeCursor struct {
	ranges []multiparent.Range
	idx    int
}

type lineRequest struct {
	id         VersionID
	start, end int
}

func (r *reconstructor) reconstruct(
	out []string, id VersionID, start, end int,
) ([]string, error) {
	if start == end {
		return out, nil
	}
	pending := []lineRequest{{id: id, start: start, end: end}}
	for len(pending) > 0 {
		req := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if lines, ok := r.s.lines[req.id]; ok {
			if req.start < 0 || req.end > len(lines) {
				return nil, base.CorruptionErrorf(
					"mpknit: request for lines [%d,%d) of version %q with %d lines",
					req.start, req.end, string(req.id), len(lines))
			}
			out = append(out, lines[req.start:req.end]...)
			continue
		}

		cur := r.cursors[req.id]
		if cur == nil {
			d, err := r.s.GetDiff(req.id)
			if err != nil {
				return nil, err
			}
			cur = &rangeCursor{ranges: d.Ranges()}
			r.cursors[req.id] = cur
		} else if cur.idx < len(cur.ranges) && cur.ranges[cur.idx].Start > req.start {
			// The request starts before the cursor; rewind.
			cur.idx = 0
		}
		for cur.idx < len(cur.ranges) && cur.ranges[cur.idx].End <= req.start {
			cur.idx++
		}
		if cur.idx >= len(cur.ranges) {
			return nil, base.CorruptionErrorf(
				"mpknit: request for lines [%d,%d) beyond version %q",
				req.start, req.end, string(req.id))
		}
		rg := cur.ranges[cur.idx]

		// If the hunk cannot satisfy the whole request, split it and leave
		// the tail for later.
		reqEnd := req.end
		if reqEnd > rg.End {
			pending = append(pending, lineRequest{id: req.id, start: rg.End, end: reqEnd})
			reqEnd = rg.End
		}
		if rg.Lines != nil {
			out = append(out, rg.Lines[req.start-rg.Start:reqEnd-rg.Start]...)
			continue
		}
		// Rewrite the copy hunk as a range request against the parent; it is
		// pushed last so it resolves before the split tail.
		parents := r.s.parents[req.id]
		if rg.Parent < 0 || rg.Parent >= len(parents) {
			return nil, base.CorruptionErrorf(
				"mpknit: version %q copies from parent %d, have %d",
				string(req.id), rg.Parent, len(parents))
		}
		pending = append(pending, lineRequest{
			id:    parents[rg.Parent],
			start: rg.ParentStart + req.start - rg.Start,
			end:   rg.ParentEnd + reqEnd - rg.End,
		})
	}
	return out, nil
}
