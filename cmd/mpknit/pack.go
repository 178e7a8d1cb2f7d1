// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mpknit/mpknit/chunk"
	"github.com/mpknit/mpknit/internal/compression"
)

var (
	packCapacity int
	packReserved int
	packZstd     bool
	packOutDir   string
)

var packCmd = &cobra.Command{
	Use:   "pack <file>...",
	Short: "pack payloads into fixed-capacity compressed chunks",
	Long: `Pack reads each file as one payload and packs them, in order, into
chunks of exactly --capacity bytes. A payload rejected by a full chunk rolls
over into the next one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPack,
}

func init() {
	packCmd.Flags().IntVar(&packCapacity, "capacity", 4096, "chunk capacity in bytes")
	packCmd.Flags().IntVar(&packReserved, "reserved", 0, "reserved bytes per chunk")
	packCmd.Flags().BoolVar(&packZstd, "zstd", false, "use zstd instead of zlib")
	packCmd.Flags().StringVar(&packOutDir, "out", ".", "output directory")
}

func runPack(cmd *cobra.Command, args []string) error {
	setting := compression.Zlib
	if packZstd {
		setting = compression.Zstd
	}
	newWriter := func() *chunk.Writer {
		return chunk.NewWriter(packCapacity,
			chunk.Reserved(packReserved), chunk.CompressionSetting(setting))
	}

	var payloads [][]byte
	for _, name := range args {
		p, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		payloads = append(payloads, p)
	}

	w := newWriter()
	numChunks := 0
	accepted := 0
	flush := func() error {
		block, unused, padding := w.Finish()
		name := filepath.Join(packOutDir, fmt.Sprintf("chunk-%04d.mpk", numChunks))
		if err := os.WriteFile(name, block, 0o666); err != nil {
			return err
		}
		fmt.Printf("%s: %d payloads, %d padding bytes\n", name, accepted, padding)
		numChunks++
		accepted = 0
		w = newWriter()
		if len(unused) > 0 && !w.Write(unused) {
			return fmt.Errorf("payload of %d bytes does not fit in an empty chunk", len(unused))
		}
		if len(unused) > 0 {
			accepted++
		}
		return nil
	}

	for _, p := range payloads {
		if w.Write(p) {
			accepted++
			continue
		}
		if err := flush(); err != nil {
			return err
		}
	}
	if accepted > 0 {
		if err := flush(); err != nil {
			return err
		}
	}
	return nil
}
