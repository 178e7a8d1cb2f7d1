// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package compression

import (
	"bufio"
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/mpknit/mpknit/internal/base"
)

type zstdCompressor struct {
	buf bytes.Buffer
	e   *zstd.Encoder
}

var _ Compressor = (*zstdCompressor)(nil)

func newZstdCompressor(level uint8) *zstdCompressor {
	c := &zstdCompressor{}
	// Single-threaded encoding: output must be byte-for-byte reproducible
	// when the same inputs are replayed on a fresh encoder.
	e, err := zstd.NewWriter(&c.buf,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(int(level))),
	)
	if err != nil {
		panic(errors.AssertionFailedf("mpknit: invalid zstd options: %v", err))
	}
	c.e = e
	return c
}

func (c *zstdCompressor) Compress(p []byte) []byte {
	c.buf.Reset()
	_, _ = c.e.Write(p)
	return c.buf.Bytes()
}

func (c *zstdCompressor) Flush() []byte {
	c.buf.Reset()
	_ = c.e.Flush()
	return c.buf.Bytes()
}

func (c *zstdCompressor) Finish() []byte {
	c.buf.Reset()
	_ = c.e.Close()
	return c.buf.Bytes()
}

func (c *zstdCompressor) Close() {}

// zstdFrameMagic is the little-endian frame magic number every zstd frame
// starts with.
var zstdFrameMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// zstdReader adapts a zstd decoder to stop cleanly at the end of the frame.
// Chunk padding follows the frame and cannot begin a valid frame, so the
// decoder reports a magic mismatch once the frame is exhausted. The frame may
// be empty, so the magic is verified up front; after that a mismatch can only
// come from the padding.
type zstdReader struct {
	d *zstd.Decoder
}

func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(zstdFrameMagic))
	if err != nil || !bytes.Equal(magic, zstdFrameMagic) {
		return nil, base.CorruptionErrorf("mpknit: not a zstd stream")
	}
	d, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, base.MarkCorruptionError(err)
	}
	return &zstdReader{d: d}, nil
}

func (r *zstdReader) Read(p []byte) (int, error) {
	n, err := r.d.Read(p)
	if err != nil && errors.Is(err, zstd.ErrMagicMismatch) {
		err = io.EOF
	}
	if err != nil && err != io.EOF {
		err = base.MarkCorruptionError(err)
	}
	return n, err
}

func (r *zstdReader) Close() error {
	r.d.Close()
	return nil
}
