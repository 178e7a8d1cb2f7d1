// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package base

import (
	"github.com/cockroachdb/errors"
)

// ErrCorruption is a marker error for corrupted data: unparseable patch
// streams, references to parent texts that do not exist, or chunk payloads
// that fail to decompress. Use errors.Is(err, ErrCorruption) to test for it.
var ErrCorruption = errors.New("mpknit: corruption")

// CorruptionErrorf formats an error and marks it as a corruption error.
func CorruptionErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCorruption)
}

// MarkCorruptionError marks the given error as a corruption error.
func MarkCorruptionError(err error) error {
	if errors.Is(err, ErrCorruption) {
		return err
	}
	return errors.Mark(err, ErrCorruption)
}

// IsCorruptionError reports whether the error indicates corrupted data as
// opposed to a usage or environmental problem.
func IsCorruptionError(err error) bool {
	return errors.Is(err, ErrCorruption)
}
