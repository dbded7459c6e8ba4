// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"github.com/gaissmai/lvcsr/internal/trace"
	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/scorer"
)

// GetSentenceEnd implements §4.5: pick the best completed hypothesis.
// For topologies with explicit end-processing, the answer is the
// minimum-prospect member of the end-trace pool. Otherwise the tree
// itself defines completion: the best word-end produced this step, or
// a live label hypothesis parked at a root-type node (a tree-level
// ending for phoneme/word topologies that never populate end-traces).
// ok is false when nothing completed, the signal to the caller to run
// PromoteFallback instead.
func (s *SearchSpace) GetSentenceEnd() (trace.ID, scorer.Score, bool) {
	if s.caps.NeedEndProcess {
		if len(s.endTraces) == 0 {
			return trace.None, 0, false
		}
		if s.cfg.DecisionRule.FullSumDecoding {
			return s.mergeFullSum(s.endTraces)
		}
		best := s.endTraces[0]
		for _, et := range s.endTraces[1:] {
			if et.Prospect < best.Prospect {
				best = et
			}
		}
		return best.TraceRef, best.Prospect, true
	}

	var bestRef trace.ID
	bestProspect := scorer.LogZero
	found := false

	for _, wh := range s.pendingWordEnds {
		if !found || wh.Prospect < bestProspect {
			bestRef, bestProspect, found = wh.TraceRef, wh.Prospect, true
		}
	}
	for _, ti := range s.registry.All() {
		for _, lh := range s.step.Labels(ti.Labels) {
			if !s.tree.IsRootType(lh.Node) {
				continue
			}
			if !found || lh.Prospect < bestProspect {
				bestRef, bestProspect, found = lh.TraceRef, lh.Prospect, true
			}
		}
	}

	if !found {
		return trace.None, 0, false
	}
	return bestRef, bestProspect, true
}

// mergeFullSum combines end traces that share a predecessor into one
// representative: the trace graph already collapses exact full-history
// duplicates onto a shared predecessor during word-end recombination
// upstream, so predecessor identity stands in for "same full
// recombination history" here. Acoustic mass is combined by log-sum;
// the representative is the pre-merge best-prospect member.
func (s *SearchSpace) mergeFullSum(ends []EndTrace) (trace.ID, scorer.Score, bool) {
	type group struct {
		rep      EndTrace
		combined scorer.Score // accumulated as a log-probability, not a cost
	}
	groups := make(map[trace.ID]*group, len(ends))

	for _, et := range ends {
		key := et.TraceRef
		if tr := s.arena.Get(et.TraceRef); tr != nil {
			if pred, ok := tr.Predecessor(); ok {
				key = pred
			}
		}
		g, ok := groups[key]
		if !ok {
			groups[key] = &group{rep: et, combined: -et.Prospect}
			continue
		}
		g.combined = logSumExp(g.combined, -et.Prospect)
		if et.Prospect < g.rep.Prospect {
			g.rep = et
		}
	}

	var best *group
	for _, g := range groups {
		g.rep.Prospect = -g.combined
		if best == nil || g.rep.Prospect < best.rep.Prospect {
			best = g
		}
	}
	if best == nil {
		return trace.None, 0, false
	}
	return best.rep.TraceRef, best.rep.Prospect, true
}

// PromoteFallback implements §4.4's fallback: when a segment ends
// without a properly ended trace, the best in-beam hypothesis tracked
// by updateFallback is promoted — its LM history is sentence-end
// scored, its word count incremented, and a terminal trace allocated.
func (s *SearchSpace) PromoteFallback() (trace.ID, scorer.Score, bool) {
	if !s.fallback.valid {
		return trace.None, 0, false
	}

	endScore := s.lmModel.SentenceEndScore(s.fallback.lmHistory)
	prospect := s.fallback.prospect + endScore
	hasPred := s.fallback.traceRef != trace.None

	tr := s.arena.New(s.fallback.traceRef, hasPred, lexicon.InvalidPronunciation, lexicon.InvalidLemma, s.position,
		trace.Scores{Acoustic: 0, LM: endScore, Prospect: prospect},
		s.fallback.nLabels, s.fallback.nWords+1, -1)

	return tr, prospect, true
}

// pruneEmptySiblings applies the "lattice optimisation" from
// original_source/: siblings whose lemma carries no syntactic tokens
// contribute nothing to the LM and are dropped before a caller walks
// the chosen trace's sibling list to build a lattice.
func (s *SearchSpace) pruneEmptySiblings(root trace.ID) {
	s.arena.PruneEmptySiblings(root, s.lex)
}
