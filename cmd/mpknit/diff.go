// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mpknit/mpknit/internal/lineseq"
	"github.com/mpknit/mpknit/multiparent"
)

var diffCmd = &cobra.Command{
	Use:   "diff <child> <parent>...",
	Short: "print the multi-parent patch of a file against its parents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDiff,
}

var applyCmd = &cobra.Command{
	Use:   "apply <patch> <parent>...",
	Short: "reconstruct a file from a patch and its parents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runApply,
}

func runDiff(cmd *cobra.Command, args []string) error {
	child, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	parents := make([]string, len(args)-1)
	for i, name := range args[1:] {
		p, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		parents[i] = string(p)
	}
	diff := multiparent.FromText(string(child), parents...)
	_, err = os.Stdout.Write(diff.Patch())
	return err
}

func runApply(cmd *cobra.Command, args []string) error {
	patch, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	diff, err := multiparent.ParsePatch(patch)
	if err != nil {
		return err
	}
	parents := make([][]string, len(args)-1)
	for i, name := range args[1:] {
		p, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		parents[i] = lineseq.SplitLines(string(p))
	}
	lines, err := diff.Apply(parents)
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(lineseq.JoinLines(lines))
	return err
}
