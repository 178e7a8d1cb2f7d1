// Copyright 2026 The Mpknit Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package lineseq splits texts into lines and computes matching blocks
// between line sequences.
package lineseq

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Match is a maximal run of identical lines: a[A:A+Size] == b[B:B+Size].
type Match = difflib.Match

// SplitLines splits text into newline-terminated lines. Every line except
// possibly the last retains its trailing newline; an empty text yields no
// lines. This differs from difflib.SplitLines, which appends a newline to the
// final fragment and so does not round-trip through strings.Join.
func SplitLines(text string) []string {
	if len(text) == 0 {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}

// MatchingBlocks returns the maximal matching blocks between a and b,
// ascending in both positions and terminated by a zero-size sentinel at
// (len(a), len(b)).
func MatchingBlocks(a, b []string) []Match {
	return difflib.NewMatcher(a, b).GetMatchingBlocks()
}
