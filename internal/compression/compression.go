// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package compression provides streaming block compressors for the chunk
// codec. Unlike one-shot block compression, the chunk writer needs to feed a
// compressor incrementally, force output at decodable boundaries (sync
// flush), and terminate the stream exactly once; this package wraps the
// supported algorithms behind that protocol.
package compression

import (
	"io"

	"github.com/cockroachdb/redact"
)

// Algorithm identifies a compression algorithm.
type Algorithm uint8

// The supported algorithms.
const (
	ZlibAlgorithm Algorithm = iota
	ZstdAlgorithm
)

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	switch a {
	case ZlibAlgorithm:
		return "zlib"
	case ZstdAlgorithm:
		return "zstd"
	default:
		return "unknown"
	}
}

// SafeFormat implements redact.SafeFormatter.
func (a Algorithm) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(a.String()))
}

// Setting selects an algorithm and a level. The level is interpreted by the
// algorithm (zlib: 1-9, zstd: the encoder speed levels).
type Setting struct {
	Algorithm Algorithm
	Level     uint8
}

// String implements fmt.Stringer.
func (s Setting) String() string {
	return redact.StringWithoutMarkers(s)
}

// SafeFormat implements redact.SafeFormatter.
func (s Setting) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s:%d", s.Algorithm, s.Level)
}

// Predefined settings.
var (
	// Zlib is the default setting; it matches the on-disk format used by the
	// content store's existing records.
	Zlib = Setting{Algorithm: ZlibAlgorithm, Level: 6}
	// ZlibSize trades speed for density.
	ZlibSize = Setting{Algorithm: ZlibAlgorithm, Level: 9}
	// Zstd is the alternative stream format.
	Zstd = Setting{Algorithm: ZstdAlgorithm, Level: 3}
)

// Compressor is a streaming block compressor. Byte slices returned by
// Compress, Flush and Finish are valid only until the next call on the same
// compressor; callers must copy or append them before feeding more input.
//
// A Compressor fed the same inputs in the same order always produces the same
// output bytes; the chunk writer relies on this to recompress from scratch.
type Compressor interface {
	// Compress feeds p to the compressor and returns any output bytes that
	// became ready. Output may be empty: the compressor is free to buffer.
	Compress(p []byte) []byte

	// Flush forces out buffered input at a decodable boundary without
	// terminating the stream (a sync flush). This costs a few bytes of
	// framing overhead.
	Flush() []byte

	// Finish terminates the stream and returns the remaining output. No input
	// may be compressed afterwards.
	Finish() []byte

	// Close releases resources. The compressor is unusable afterwards.
	Close()
}

// NewCompressor returns a streaming compressor for the setting.
func NewCompressor(s Setting) Compressor {
	switch s.Algorithm {
	case ZstdAlgorithm:
		return newZstdCompressor(s.Level)
	default:
		return newZlibCompressor(s.Level)
	}
}

// NewReader returns a reader that decompresses a stream produced by a
// Compressor with the same setting. The reader stops at the end of the
// compressed stream; bytes past it (such as chunk padding) are not consumed.
func NewReader(s Setting, r io.Reader) (io.ReadCloser, error) {
	switch s.Algorithm {
	case ZstdAlgorithm:
		return newZstdReader(r)
	default:
		return newZlibReader(r)
	}
}
