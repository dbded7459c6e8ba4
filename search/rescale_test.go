// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"testing"

	"github.com/gaissmai/lvcsr/internal/beam"
)

func TestRescaleDeltaZeroBelowThreshold(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.step.Begin()
	s.step.AppendLabels(
		beam.LabelHypothesis{Score: 10.0},
		beam.LabelHypothesis{Score: 5.0},
	)

	if got := s.rescaleDelta(); got != 0 {
		t.Fatalf("rescaleDelta = %v, want 0 when best score is well under threshold", got)
	}
}

func TestRescaleDeltaZeroOnEmptyBeam(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.step.Begin()

	if got := s.rescaleDelta(); got != 0 {
		t.Fatalf("rescaleDelta = %v, want 0 on an empty beam (best stays LogZero)", got)
	}
}

func TestRescaleDeltaReturnsBestPastThreshold(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.step.Begin()
	best := rescaleThreshold + 1
	s.step.AppendLabels(
		beam.LabelHypothesis{Score: best},
		beam.LabelHypothesis{Score: best + 500},
	)

	got := s.rescaleDelta()
	if got != best {
		t.Fatalf("rescaleDelta = %v, want the best (lowest-cost) score %v", got, best)
	}
}

func TestCleanupAndRescaleSkipsUnderLengthNormalization(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.cfg.LengthNormalization.LengthNormalization = true
	s.step.Begin()
	best := rescaleThreshold + 1
	s.step.AppendLabels(beam.LabelHypothesis{Score: best})

	s.cleanupAndRescale()

	if s.globalScoreOffset != 0 {
		t.Fatalf("globalScoreOffset = %v, want 0 when length normalisation suppresses rescaling", s.globalScoreOffset)
	}
	if s.step.AllLabels()[0].Score != best {
		t.Fatalf("label score mutated despite length normalisation being on")
	}
}

func TestCleanupAndRescaleShiftsLiveBeamAndAccumulatesOffset(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.step.Begin()
	best := rescaleThreshold + 10
	s.step.AppendLabels(
		beam.LabelHypothesis{Score: best, Prospect: best + 1},
		beam.LabelHypothesis{Score: best + 3, Prospect: best + 4},
	)
	s.pendingWordEnds = []beam.WordEndHypothesis{{Score: best + 2, Prospect: best + 2}}
	s.endTraces = []EndTrace{{Prospect: best + 5}}
	s.fallback = fallbackCandidate{valid: true, prospect: best + 6}

	s.cleanupAndRescale()

	if s.globalScoreOffset != best {
		t.Fatalf("globalScoreOffset = %v, want %v", s.globalScoreOffset, best)
	}
	labels := s.step.AllLabels()
	if labels[0].Score != 0 {
		t.Fatalf("labels[0].Score = %v, want 0 after subtracting its own value as delta", labels[0].Score)
	}
	if labels[1].Score != 3 {
		t.Fatalf("labels[1].Score = %v, want 3", labels[1].Score)
	}
	if s.pendingWordEnds[0].Score != 2 {
		t.Fatalf("pendingWordEnds[0].Score = %v, want 2", s.pendingWordEnds[0].Score)
	}
	if s.endTraces[0].Prospect != 5 {
		t.Fatalf("endTraces[0].Prospect = %v, want 5", s.endTraces[0].Prospect)
	}
	if s.fallback.prospect != 6 {
		t.Fatalf("fallback.prospect = %v, want 6", s.fallback.prospect)
	}
}

func TestCleanupAndRescaleForgetsEmptyInstanceLookahead(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.cfg.InstanceLifecycle.InstanceDeletionTolerance = 0
	s.step.Begin()

	ti := s.registry.Activate(1, func() *beam.Instance { return beam.NewInstance(1, 0, 0) })
	_ = ti
	if s.registry.Len() != 1 {
		t.Fatalf("registry.Len() = %d, want 1 before cleanup", s.registry.Len())
	}

	s.cleanupAndRescale()

	if s.registry.Len() != 0 {
		t.Fatalf("registry.Len() = %d, want 0 after an empty instance exceeds its deletion tolerance", s.registry.Len())
	}
}
