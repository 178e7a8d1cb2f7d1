// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package chunk

import (
	"bytes"
	"io"

	"github.com/mpknit/mpknit/internal/base"
	"github.com/mpknit/mpknit/internal/compression"
)

// Decompress returns the concatenated payload of a block produced by a
// Writer with the same compression setting. The compressed stream is
// self-terminating, so trailing padding is ignored.
func Decompress(block []byte, setting compression.Setting) ([]byte, error) {
	r, err := compression.NewReader(setting, bytes.NewReader(block))
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, base.MarkCorruptionError(err)
	}
	return payload, nil
}

// NewReader returns a reader over the payload of a block produced by a
// Writer with the same compression setting.
func NewReader(block []byte, setting compression.Setting) (io.ReadCloser, error) {
	return compression.NewReader(setting, bytes.NewReader(block))
}
