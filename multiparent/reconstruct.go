// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package multiparent

import (
	"github.com/cockroachdb/errors"
	"github.com/mpknit/mpknit/internal/base"
)

// ErrMissingParent indicates a copy hunk referencing a parent index or line
// range outside the supplied parent texts. The format carries no redundancy,
// so this is the only validity check reconstruction can make; it points at
// corrupted data or a parent-resolution bug upstream.
var ErrMissingParent = errors.New("mpknit: missing parent text")

func missingParentErrorf(format string, args ...interface{}) error {
	return errors.Mark(base.CorruptionErrorf(format, args...), ErrMissingParent)
}

// Apply reconstructs the child text from the diff and its resolved parent
// texts. Parents must be supplied in the order the diff was built against.
func (d Diff) Apply(parents [][]string) ([]string, error) {
	lines := make([]string, 0, d.NumLines())
	for _, h := range d.Hunks {
		switch h := h.(type) {
		case NewText:
			lines = append(lines, h.Lines...)
		case ParentText:
			if h.Parent < 0 || h.Parent >= len(parents) {
				return nil, missingParentErrorf(
					"mpknit: hunk references parent %d, have %d", h.Parent, len(parents))
			}
			p := parents[h.Parent]
			if h.ParentPos < 0 || h.NumLines < 0 || h.ParentPos+h.NumLines > len(p) {
				return nil, missingParentErrorf(
					"mpknit: hunk copies lines [%d,%d) of parent %d, which has %d lines",
					h.ParentPos, h.ParentPos+h.NumLines, h.Parent, len(p))
			}
			lines = append(lines, p[h.ParentPos:h.ParentPos+h.NumLines]...)
		}
	}
	return lines, nil
}
