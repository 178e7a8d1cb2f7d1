// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package chunk packs logical byte strings into fixed-capacity compressed
// records. A Writer accepts payloads until they risk overflowing its
// capacity, recompressing from scratch a bounded number of times to pack
// tighter before giving up; Finish pads the compressed stream to exactly the
// capacity. Rejected payloads are handed back for the caller to route to a
// subsequent chunk.
package chunk

import (
	"github.com/cockroachdb/errors"
	"github.com/mpknit/mpknit/internal/compression"
)

const (
	// minCompressRatio guards the fast path: as long as the raw bytes seen
	// stay under this multiple of the usable capacity, input is assumed to
	// compress enough to fit and is fed straight through without flushing.
	minCompressRatio = 1.8

	// maxRepacks bounds the number of full recompression passes a writer
	// performs for non-reserved writes. Without the bound, a nearly full
	// writer would recompress its entire contents on every further write.
	maxRepacks = 2

	// trailerMargin is the slack kept for the terminal flush: ending the
	// stream after a sync flush costs a few bytes more than the sync flush
	// already emitted.
	trailerMargin = 10
)

// Writer packs byte strings into a single compressed block of exactly
// capacity bytes. It is single-use: a sequence of Write/WriteReserved calls
// terminated by exactly one Finish. A Writer is not safe for concurrent use;
// the natural unit of parallelism is one writer per chunk.
type Writer struct {
	capacity int
	reserved int
	setting  compression.Setting

	c compression.Compressor
	// out is the compressed output accumulated so far. Writes that went
	// through the slow path have verified len(out)+trailerMargin against the
	// usable capacity; fast-path writes are covered by minCompressRatio.
	out []byte
	// accepted retains the raw inputs, in order, until Finish: a repack
	// replays them through a fresh compressor.
	accepted [][]byte

	seenBytes int
	repacks   int
	unused    []byte
	finished  bool
}

// Option configures a Writer.
type Option func(*Writer)

// Reserved withholds n bytes of the capacity from ordinary Write calls; only
// WriteReserved may use them. Callers use this to guarantee room for a
// trailing payload such as a page footer.
func Reserved(n int) Option {
	return func(w *Writer) { w.reserved = n }
}

// CompressionSetting selects the stream format. The default is zlib.
func CompressionSetting(s compression.Setting) Option {
	return func(w *Writer) { w.setting = s }
}

// NewWriter returns a Writer producing a block of exactly capacity bytes.
func NewWriter(capacity int, opts ...Option) *Writer {
	w := &Writer{
		capacity: capacity,
		setting:  compression.Zlib,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.c = compression.NewCompressor(w.setting)
	return w
}

// Capacity returns the writer's target block size.
func (w *Writer) Capacity() int { return w.capacity }

// Repacks returns the number of full recompression passes performed.
func (w *Writer) Repacks() int { return w.repacks }

// Write offers p to the writer and reports whether it was accepted. A
// rejected payload leaves the eventual block's decompressed contents
// unchanged; the caller routes it to another chunk. Write retains no
// reference to p.
func (w *Writer) Write(p []byte) bool {
	return w.write(p, false)
}

// WriteReserved is Write, but allowed to consume the reserved capacity and
// exempt from the repack bound.
func (w *Writer) WriteReserved(p []byte) bool {
	return w.write(p, true)
}

func (w *Writer) write(p []byte, reserved bool) bool {
	if w.finished {
		panic(errors.AssertionFailedf("mpknit: Write on finished chunk.Writer"))
	}
	usable := w.capacity
	if !reserved {
		usable -= w.reserved
	}

	if float64(w.seenBytes+len(p)) < minCompressRatio*float64(usable) {
		// Fast path: assume it will fit. No sync flush, so no framing
		// overhead.
		w.accept(p)
		w.out = append(w.out, w.c.Compress(p)...)
		return true
	}

	if !reserved && w.repacks >= maxRepacks {
		// Out of repack budget: reject without touching the compressor.
		w.unused = append(w.unused, p...)
		return false
	}

	// Slow path: compress with a sync flush so the running output length is
	// an honest lower bound on the finished stream.
	w.out = append(w.out, w.c.Compress(p)...)
	w.out = append(w.out, w.c.Flush()...)
	if len(w.out)+trailerMargin <= usable {
		w.accept(p)
		return true
	}

	// The flushed stream is at risk of overflow. Recompress everything from
	// scratch: replaying the accepted inputs without intermediate sync
	// flushes packs tighter than the incremental stream did.
	w.repacks++
	c, out := w.recompress(p)
	if len(out)+trailerMargin > usable {
		c.Close()
		// Even the tight packing cannot take p. Re-establish compressor and
		// output from the accepted inputs alone, so the writer's state no
		// longer reflects the rejected bytes.
		c, out = w.recompress(nil)
		w.c.Close()
		w.c, w.out = c, out
		w.unused = append(w.unused, p...)
		return false
	}
	w.c.Close()
	w.c, w.out = c, out
	w.accept(p)
	return true
}

func (w *Writer) accept(p []byte) {
	w.accepted = append(w.accepted, append([]byte(nil), p...))
	w.seenBytes += len(p)
}

// recompress replays the accepted inputs, plus the candidate if non-nil,
// through a fresh compressor. When measuring a candidate the stream is sync
// flushed once at the end so the returned length is decodable-boundary
// honest; the restore path skips the flush, leaving the compressor in the
// same state as if the inputs had arrived on the fast path.
func (w *Writer) recompress(candidate []byte) (compression.Compressor, []byte) {
	c := compression.NewCompressor(w.setting)
	var out []byte
	for _, p := range w.accepted {
		out = append(out, c.Compress(p)...)
	}
	if candidate != nil {
		out = append(out, c.Compress(candidate)...)
		out = append(out, c.Flush()...)
	}
	return c, out
}

// Finish terminates the stream and returns the block, padded to exactly
// capacity bytes, along with any bytes rejected by earlier writes (nil if
// none) and the number of padding bytes used. The writer is unusable
// afterwards.
//
// The compressed stream exceeding capacity here means the write-path
// bookkeeping failed to predict the trailer cost; that is a bug, and
// aborting beats emitting a block downstream readers cannot trust.
func (w *Writer) Finish() (block []byte, unused []byte, padding int) {
	if w.finished {
		panic(errors.AssertionFailedf("mpknit: Finish on finished chunk.Writer"))
	}
	w.finished = true
	w.accepted = nil
	w.out = append(w.out, w.c.Finish()...)
	w.c.Close()
	if len(w.out) > w.capacity {
		panic(errors.AssertionFailedf(
			"mpknit: chunk stream is %d bytes, capacity %d", len(w.out), w.capacity))
	}
	// A stream already exactly at capacity needs no padding. (Deriving the
	// padding from len%capacity would pad a full extra block here.)
	padding = w.capacity - len(w.out)
	block = append(w.out, make([]byte, padding)...)
	w.out = nil
	return block, w.unused, padding
}
