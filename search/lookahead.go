// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import "github.com/gaissmai/lvcsr/internal/lmla"

// applyLookahead is driver step 3: every live label hypothesis's
// prospect is its score plus the LMLA score of the LMLA node its LPT
// node compresses into, under the owning instance's lookahead history.
// An instance only earns a full-order propagation once its share of
// the beam's total labels meets instance_lookahead_label_threshold;
// below that it falls back to the unigram vector, same as once the RTF
// budget trips for an instance without a cached vector yet — §5's soft
// degrade rather than abort.
func (s *SearchSpace) applyLookahead() {
	instances := s.registry.All()

	total := 0
	for _, ti := range instances {
		total += ti.Labels.Len()
	}

	for _, ti := range instances {
		var vec lmla.ScoreVector
		if s.rtf.Tripped() && !ti.LookaheadCached() {
			vec = s.lookahead.Unigram()
		} else {
			vec = ti.Lookahead(s.lookahead, ti.Labels.Len(), total, s.cfg.InstanceLifecycle.InstanceLookaheadLabelThreshold)
		}
		labels := s.step.Labels(ti.Labels)
		for i := range labels {
			lmlaNode := s.lookahead.NodeOf(labels[i].Node)
			labels[i].Prospect = labels[i].Score + vec.Get(lmlaNode)
		}
	}
}
