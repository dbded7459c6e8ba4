// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lmla

import "github.com/gaissmai/lvcsr/scorer"

// ScoreVector holds one look-ahead score per LMLA node for a single LM
// history.
type ScoreVector []scorer.Score

// Get returns the look-ahead score of n, or LogZero if the vector does
// not cover n (an uninitialised vector, or an out-of-range id).
func (v ScoreVector) Get(n NodeID) scorer.Score {
	if int(n) < 0 || int(n) >= len(v) {
		return scorer.LogZero
	}
	return v[n]
}
