// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package compression

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zlib"
	"github.com/mpknit/mpknit/internal/base"
)

type zlibCompressor struct {
	buf bytes.Buffer
	w   *zlib.Writer
}

var _ Compressor = (*zlibCompressor)(nil)

func newZlibCompressor(level uint8) *zlibCompressor {
	c := &zlibCompressor{}
	w, err := zlib.NewWriterLevel(&c.buf, int(level))
	if err != nil {
		panic(errors.AssertionFailedf("mpknit: invalid zlib level %d", level))
	}
	c.w = w
	return c
}

func (c *zlibCompressor) Compress(p []byte) []byte {
	c.buf.Reset()
	// Writes to a bytes.Buffer cannot fail.
	_, _ = c.w.Write(p)
	return c.buf.Bytes()
}

func (c *zlibCompressor) Flush() []byte {
	c.buf.Reset()
	_ = c.w.Flush()
	return c.buf.Bytes()
}

func (c *zlibCompressor) Finish() []byte {
	c.buf.Reset()
	_ = c.w.Close()
	return c.buf.Bytes()
}

func (c *zlibCompressor) Close() {}

func newZlibReader(r io.Reader) (io.ReadCloser, error) {
	rc, err := zlib.NewReader(r)
	if err != nil {
		return nil, base.MarkCorruptionError(err)
	}
	return rc, nil
}
