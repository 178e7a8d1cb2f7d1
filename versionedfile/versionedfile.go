// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package versionedfile stores the revisions of a single file as multi-parent
// diffs. Most versions are kept as deltas against their parents; every so
// often a version is stored as a fulltext snapshot so that reconstruction
// chains stay short.
package versionedfile

import (
	"github.com/cockroachdb/errors"
	"github.com/mpknit/mpknit/multiparent"
)

// VersionID identifies one revision of the file.
type VersionID string

// ErrVersionNotPresent indicates a version id unknown to the store.
var ErrVersionNotPresent = errors.New("mpknit: version not present")

// DefaultSnapshotInterval is the default bound on the length of a version's
// build-ancestor chain before it is stored as a snapshot.
const DefaultSnapshotInterval = 25

// Store is an in-memory multi-parent versioned file. It is not safe for
// concurrent use.
type Store struct {
	snapshotInterval int
	maxSnapshots     int

	diffs     map[VersionID]multiparent.Diff
	parents   map[VersionID][]VersionID
	lines     map[VersionID][]string
	snapshots map[VersionID]struct{}
	// order records insertion order so that graph walks are deterministic.
	order []VersionID
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// SnapshotInterval overrides DefaultSnapshotInterval. Zero or negative
// disables automatic snapshots entirely.
func SnapshotInterval(n int) StoreOption {
	return func(s *Store) { s.snapshotInterval = n }
}

// MaxSnapshots caps the number of snapshots the policy will create. Zero
// means no cap.
func MaxSnapshots(n int) StoreOption {
	return func(s *Store) { s.maxSnapshots = n }
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		snapshotInterval: DefaultSnapshotInterval,
		diffs:            make(map[VersionID]multiparent.Diff),
		parents:          make(map[VersionID][]VersionID),
		lines:            make(map[VersionID][]string),
		snapshots:        make(map[VersionID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasVersion reports whether the store knows the version.
func (s *Store) HasVersion(id VersionID) bool {
	_, ok := s.diffs[id]
	return ok
}

// Versions returns the known version ids in insertion order.
func (s *Store) Versions() []VersionID {
	return append([]VersionID(nil), s.order...)
}

// Parents returns a version's parent ids.
func (s *Store) Parents(id VersionID) ([]VersionID, error) {
	if !s.HasVersion(id) {
		return nil, errors.Mark(
			errors.Newf("mpknit: version %q not present", string(id)), ErrVersionNotPresent)
	}
	return s.parents[id], nil
}

// IsSnapshot reports whether the version is stored as a fulltext.
func (s *Store) IsSnapshot(id VersionID) bool {
	_, ok := s.snapshots[id]
	return ok
}

// AddVersion stores a new version, deciding automatically whether to store it
// as a diff against its parents or as a fulltext snapshot.
func (s *Store) AddVersion(lines []string, id VersionID, parentIDs []VersionID) error {
	if s.shouldSnapshot(parentIDs) {
		s.AddSnapshot(lines, id, parentIDs)
		return nil
	}
	parentLines := make([][]string, len(parentIDs))
	for i, pid := range parentIDs {
		pl, err := s.GetLines(pid)
		if err != nil {
			return err
		}
		parentLines[i] = pl
	}
	diff := multiparent.FromLines(lines, parentLines)
	if diff.IsSnapshot() {
		s.snapshots[id] = struct{}{}
	}
	s.AddDiff(diff, id, parentIDs)
	s.lines[id] = append([]string(nil), lines...)
	return nil
}

// AddSnapshot stores a version as a fulltext regardless of policy. Parent ids
// are retained as metadata.
func (s *Store) AddSnapshot(lines []string, id VersionID, parentIDs []VersionID) {
	var hunks []multiparent.Hunk
	if len(lines) > 0 {
		hunks = []multiparent.Hunk{multiparent.NewText{Lines: lines}}
	}
	s.snapshots[id] = struct{}{}
	s.AddDiff(multiparent.Diff{Hunks: hunks}, id, parentIDs)
	s.lines[id] = append([]string(nil), lines...)
}

// AddDiff stores a prebuilt diff for a version.
func (s *Store) AddDiff(diff multiparent.Diff, id VersionID, parentIDs []VersionID) {
	if !s.HasVersion(id) {
		s.order = append(s.order, id)
	}
	s.diffs[id] = diff
	s.parents[id] = append([]VersionID(nil), parentIDs...)
}

// GetDiff returns the stored diff for a version.
func (s *Store) GetDiff(id VersionID) (multiparent.Diff, error) {
	d, ok := s.diffs[id]
	if !ok {
		return multiparent.Diff{}, errors.Mark(
			errors.Newf("mpknit: version %q not present", string(id)), ErrVersionNotPresent)
	}
	return d, nil
}

// GetLines returns a version's full text, reconstructing it through the diff
// graph if it is not cached. The result is cached; callers must not mutate
// it.
func (s *Store) GetLines(id VersionID) ([]string, error) {
	if lines, ok := s.lines[id]; ok {
		return lines, nil
	}
	d, err := s.GetDiff(id)
	if err != nil {
		return nil, err
	}
	r := &reconstructor{s: s, cursors: make(map[VersionID]*rangeCursor)}
	lines, err := r.reconstruct(make([]string, 0, d.NumLines()), id, 0, d.NumLines())
	if err != nil {
		return nil, err
	}
	s.lines[id] = lines
	return lines, nil
}

// ClearCache drops the cached fulltexts. Subsequent GetLines calls
// reconstruct from the diffs.
func (s *Store) ClearCache() {
	s.lines = make(map[VersionID][]string)
}

// shouldSnapshot implements the snapshot policy: versions with no parents are
// snapshots, and a version is a snapshot when no walk of up to
// snapshotInterval steps through non-snapshot ancestors reaches the bottom of
// the build chain.
func (s *Store) shouldSnapshot(parentIDs []VersionID) bool {
	if s.snapshotInterval <= 0 {
		return false
	}
	if s.maxSnapshots > 0 && len(s.snapshots) >= s.maxSnapshots {
		return false
	}
	if len(parentIDs) == 0 {
		return true
	}
	frontier := parentIDs
	for i := 0; i < s.snapshotInterval; i++ {
		if len(frontier) == 0 {
			return false
		}
		var next []VersionID
		for _, id := range frontier {
			if !s.IsSnapshot(id) {
				next = append(next, s.parents[id]...)
			}
		}
		frontier = next
	}
	return true
}
