// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Command mpknit builds and applies multi-parent patches and packs payloads
// into fixed-capacity compressed chunks.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "mpknit [command] (flags)",
	Short:         "multi-parent delta and chunk packing tool",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		diffCmd,
		applyCmd,
		packCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
