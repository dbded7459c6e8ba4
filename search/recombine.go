// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"math"

	"github.com/gaissmai/lvcsr/internal/beam"
	"github.com/gaissmai/lvcsr/scorer"
)

// logSumExp combines two log-probabilities as the full-sum decision
// rule requires: log(exp(a)+exp(b)).
func logSumExp(a, b scorer.Score) scorer.Score {
	if a == scorer.LogZero {
		return b
	}
	if b == scorer.LogZero {
		return a
	}
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	return hi + math.Log1p(math.Exp(lo-hi))
}

// recombineWithinTree is driver step 5: group each instance's live
// label hypotheses by (node, reduced label history, position),
// keeping the best-prospect member (Viterbi) or summing acoustic
// scores (full-sum, label_full_sum). The label-scorer handle used for
// the reduced hash is the one each child already carries post
// extend_history — see extendHistory's doc comment for why this
// module folds extend-history into expand-labels instead of
// deferring it past recombination.
func (s *SearchSpace) recombineWithinTree() {
	if !s.cfg.Recombination.AllowLabelRecombination {
		return
	}

	all := s.step.AllLabels()
	write := 0
	for _, ti := range sortedInstances(s) {
		begin := write
		groups := make(map[uint64]int, ti.Labels.Len())
		for _, lh := range all[ti.Labels.Begin:ti.Labels.End] {
			key := beam.LabelRecombinationKey(s.sc, lh.History, s.cfg.Recombination.LabelRecombinationLimit, lh.Node, lh.Position)
			if idx, ok := groups[key]; ok {
				cur := &all[idx]
				if s.cfg.DecisionRule.LabelFullSum {
					cur.Score = -logSumExp(-cur.Score, -lh.Score)
					if lh.Prospect < cur.Prospect {
						cur.Prospect, cur.TraceRef, cur.History = lh.Prospect, lh.TraceRef, lh.History
					}
				} else if lh.Prospect < cur.Prospect {
					*cur = lh
				}
				continue
			}
			all[write] = lh
			groups[key] = write
			write++
		}
		ti.Labels = beam.Range{Begin: begin, End: write}
	}

	s.step.SetLabels(all[:write])
}

// extendHistory is driver step 6. This implementation computes each
// child's extended label-scorer handle eagerly in expand-labels
// (expandNode), rather than deferring it to this step for survivors
// only — trading the reference implementation's "skip extend_history
// for hypotheses about to be pruned" optimisation for a simpler
// single-pass expand. Kept as an explicit no-op so the driver's
// twelve steps stay visible in Step.
func (s *SearchSpace) extendHistory() {}

// recombineWordEnds is driver step 10: group survivors by (reduced
// word history, reduced label history, transit root, position),
// keeping the best (Viterbi, loser attached as a sibling) or merging
// acoustic scores (full-sum).
func (s *SearchSpace) recombineWordEnds(created []beam.WordEndHypothesis) []beam.WordEndHypothesis {
	if !s.cfg.Recombination.AllowWordEndRecombination || len(created) == 0 {
		return created
	}

	groups := make(map[uint64]int, len(created))
	out := make([]beam.WordEndHypothesis, 0, len(created))

	for _, wh := range created {
		exit := s.tree.Exit(wh.Exit)
		key := beam.WordEndRecombinationKey(
			s.lmModel, s.sc,
			wh.RecombinationHistory, s.cfg.Recombination.WordEndRecombinationLimit,
			wh.LabelHandle, s.cfg.Recombination.LabelRecombinationLimit,
			exit.TransitRoot, wh.Position,
		)

		idx, ok := groups[key]
		if !ok {
			groups[key] = len(out)
			out = append(out, wh)
			continue
		}

		cur := out[idx]
		if s.cfg.DecisionRule.FullSumDecoding {
			cur.Score = -logSumExp(-cur.Score, -wh.Score)
		}
		if wh.Prospect < cur.Prospect {
			s.arena.SetSibling(wh.TraceRef, cur.TraceRef)
			cur.TraceRef, cur.Prospect = wh.TraceRef, wh.Prospect
		} else {
			s.arena.SetSibling(cur.TraceRef, wh.TraceRef)
		}
		out[idx] = cur
	}

	return out
}
