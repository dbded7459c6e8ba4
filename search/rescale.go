// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"github.com/gaissmai/lvcsr/internal/beam"
	"github.com/gaissmai/lvcsr/scorer"
)

// rescaleThreshold is the cost magnitude past which cleanupAndRescale
// pulls the beam back toward zero to guard against drift over a long
// segment; the value is arbitrary headroom, not a precision bound.
const rescaleThreshold scorer.Score = 1e6

// cleanupAndRescale is driver step 12: drop tree instances empty past
// their deletion tolerance (forgetting their cached look-ahead
// vector), then, unless length normalisation is active, rescale the
// live beam if its best score has drifted past rescaleThreshold.
func (s *SearchSpace) cleanupAndRescale() {
	s.registry.Cleanup(func(ti *beam.Instance) {
		s.lookahead.Forget(ti.LookaheadHistory)
	})

	if s.cfg.LengthNormalization.LengthNormalization {
		return
	}

	delta := s.rescaleDelta()
	if delta == 0 {
		return
	}

	labels := s.step.AllLabels()
	for i := range labels {
		labels[i].Score -= delta
		labels[i].Prospect -= delta
	}
	for i := range s.pendingWordEnds {
		s.pendingWordEnds[i].Score -= delta
		s.pendingWordEnds[i].Prospect -= delta
	}
	for i := range s.endTraces {
		s.endTraces[i].Prospect -= delta
	}
	if s.fallback.valid {
		s.fallback.prospect -= delta
	}
	s.globalScoreOffset += delta
}

// rescaleDelta reports the offset to subtract this step, or 0 if the
// beam's best score is still within rescaleThreshold.
func (s *SearchSpace) rescaleDelta() scorer.Score {
	best := scorer.LogZero
	for _, lh := range s.step.AllLabels() {
		if lh.Score < best {
			best = lh.Score
		}
	}
	if best == scorer.LogZero || best < rescaleThreshold {
		return 0
	}
	return best
}
