// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package versionedfile

// TopoOrder returns the store's versions ordered so that every version
// follows all of its in-store parents. Parents missing from the store
// (ghosts) do not block their descendants. The order is deterministic: ties
// resolve by insertion order.
func (s *Store) TopoOrder() []VersionID {
	seen := make(map[VersionID]bool, len(s.order))
	pendingParents := func(id VersionID) int {
		n := 0
		for _, p := range s.parents[id] {
			if s.HasVersion(p) && !seen[p] {
				n++
			}
		}
		return n
	}
	descendants := make(map[VersionID][]VersionID)
	for _, id := range s.order {
		for _, p := range s.parents[id] {
			descendants[p] = append(descendants[p], id)
		}
	}
	result := make([]VersionID, 0, len(s.order))
	var cur []VersionID
	for _, id := range s.order {
		if pendingParents(id) == 0 {
			cur = append(cur, id)
		}
	}
	for len(cur) > 0 {
		var next []VersionID
		for _, id := range cur {
			if seen[id] || pendingParents(id) != 0 {
				continue
			}
			next = append(next, descendants[id]...)
			result = append(result, id)
			seen[id] = true
		}
		cur = next
	}
	return result
}

// SelectSnapshots returns the versions the snapshot policy would store as
// fulltexts, based on the shape of the version graph alone: a version whose
// accumulated build ancestry exceeds the snapshot interval becomes a
// snapshot and resets the chain below it.
func (s *Store) SelectSnapshots() map[VersionID]bool {
	buildAncestors := make(map[VersionID]map[VersionID]bool)
	snapshots := make(map[VersionID]bool)
	for _, id := range s.TopoOrder() {
		parents := s.parents[id]
		if len(parents) == 0 {
			snapshots[id] = true
			buildAncestors[id] = make(map[VersionID]bool)
			continue
		}
		potential := make(map[VersionID]bool)
		for _, p := range parents {
			potential[p] = true
			for a := range buildAncestors[p] {
				potential[a] = true
			}
		}
		if len(potential) > s.snapshotInterval {
			snapshots[id] = true
			buildAncestors[id] = make(map[VersionID]bool)
		} else {
			buildAncestors[id] = potential
		}
	}
	return snapshots
}
