// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"testing"

	"github.com/gaissmai/lvcsr/internal/beam"
	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/internal/trace"
	"github.com/gaissmai/lvcsr/lexicon"
)

func TestGetSentenceEndPicksBestEndTraceWhenEndProcessingIsNeeded(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.caps.NeedEndProcess = true
	s.endTraces = []EndTrace{
		{TraceRef: 1, Prospect: 3.0},
		{TraceRef: 2, Prospect: 1.0},
		{TraceRef: 3, Prospect: 2.0},
	}

	ref, prospect, ok := s.GetSentenceEnd()
	if !ok {
		t.Fatalf("GetSentenceEnd ok = false, want true")
	}
	if ref != 2 || prospect != 1.0 {
		t.Fatalf("GetSentenceEnd = (%v, %v), want (2, 1.0)", ref, prospect)
	}
}

func TestGetSentenceEndFailsWithNoEndTracesWhenEndProcessingIsNeeded(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.caps.NeedEndProcess = true

	if _, _, ok := s.GetSentenceEnd(); ok {
		t.Fatalf("GetSentenceEnd ok = true with an empty end-trace pool, want false")
	}
}

func TestGetSentenceEndUsesFullSumMergeWhenConfigured(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.caps.NeedEndProcess = true
	s.cfg.DecisionRule.FullSumDecoding = true

	root := s.arena.New(trace.None, false, lexicon.InvalidPronunciation, lexicon.InvalidLemma, 0, trace.Scores{}, 0, 0, -1)
	s.endTraces = []EndTrace{
		{TraceRef: root, Prospect: 2.0},
		{TraceRef: root, Prospect: 2.0}, // same predecessor group, mass should combine
	}

	_, prospect, ok := s.GetSentenceEnd()
	if !ok {
		t.Fatalf("GetSentenceEnd ok = false, want true")
	}
	if prospect >= 2.0 {
		t.Fatalf("GetSentenceEnd merged prospect = %v, want < 2.0 (combining two equal-mass ends lowers cost)", prospect)
	}
}

func TestGetSentenceEndFallsBackToRootTypeLiveHypothesis(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.caps.NeedEndProcess = false

	ti := s.registry.Activate(1, func() *beam.Instance { return beam.NewInstance(1, 0, 0) })
	s.step.Begin()
	ti.Labels = s.step.AppendLabels(
		beam.LabelHypothesis{Node: lpt.Root, Prospect: 2.0, TraceRef: 7},
		beam.LabelHypothesis{Node: tree.Successors(lpt.Root, nil)[0], Prospect: 0.5, TraceRef: 9}, // not root-type, ignored
	)

	ref, prospect, ok := s.GetSentenceEnd()
	if !ok {
		t.Fatalf("GetSentenceEnd ok = false, want true")
	}
	if ref != 7 || prospect != 2.0 {
		t.Fatalf("GetSentenceEnd = (%v, %v), want (7, 2.0) — only the root-type hypothesis qualifies", ref, prospect)
	}
}

func TestGetSentenceEndPrefersPendingWordEndOverLiveRoot(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.caps.NeedEndProcess = false
	s.pendingWordEnds = []beam.WordEndHypothesis{{TraceRef: 5, Prospect: 0.1}}

	ti := s.registry.Activate(1, func() *beam.Instance { return beam.NewInstance(1, 0, 0) })
	s.step.Begin()
	ti.Labels = s.step.AppendLabels(beam.LabelHypothesis{Node: lpt.Root, Prospect: 2.0, TraceRef: 7})

	ref, prospect, ok := s.GetSentenceEnd()
	if !ok || ref != 5 || prospect != 0.1 {
		t.Fatalf("GetSentenceEnd = (%v, %v, %v), want (5, 0.1, true)", ref, prospect, ok)
	}
}

func TestPromoteFallbackFailsWithoutACandidate(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)

	if _, _, ok := s.PromoteFallback(); ok {
		t.Fatalf("PromoteFallback ok = true with no fallback candidate recorded, want false")
	}
}

func TestPromoteFallbackAllocatesTerminalTraceWithSentenceEndScore(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.lmModel = fixedLM{endScore: 1.25}

	s.fallback = fallbackCandidate{
		valid:    true,
		traceRef: trace.None,
		prospect: 3.0,
		nLabels:  4,
		nWords:   2,
	}

	ref, prospect, ok := s.PromoteFallback()
	if !ok {
		t.Fatalf("PromoteFallback ok = false, want true")
	}
	if prospect != 3.0+1.25 {
		t.Fatalf("PromoteFallback prospect = %v, want %v", prospect, 3.0+1.25)
	}
	tr := s.arena.Get(ref)
	if tr == nil {
		t.Fatalf("PromoteFallback did not allocate a reachable trace")
	}
	if tr.NWords != 3 {
		t.Fatalf("tr.NWords = %d, want 3 (fallback's 2 plus the promoted terminal)", tr.NWords)
	}
	if tr.Scores.LM != 1.25 {
		t.Fatalf("tr.Scores.LM = %v, want 1.25", tr.Scores.LM)
	}
	if _, hasPred := tr.Predecessor(); hasPred {
		t.Fatalf("tr has a predecessor, want none since fallback.traceRef was trace.None")
	}
}
