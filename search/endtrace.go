// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"math"

	"github.com/gaissmai/lvcsr/internal/beam"
	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/scorer"
)

// hasEnded reports whether lh ends this step under one of §4.4's three
// conditions: the configured end-label was emitted (label-sync), a
// blank root was reached at input-length (alignment-sync vertical),
// or the hypothesis is segmental and its start position has caught up
// with the input.
func (s *SearchSpace) hasEnded(lh beam.LabelHypothesis) bool {
	if s.cfg.HasEndLabel && s.tree.LabelOf(lh.Node) == s.cfg.EndLabel {
		return true
	}
	if s.caps.UseVerticalTransition && lh.IsBlank && lh.Node == lpt.Root && s.position+1 >= s.inputLength {
		return true
	}
	if s.caps.UseRelativePosition && lh.Position >= 0 && lh.Position >= s.inputLength {
		return true
	}
	return false
}

// updateFallback records the best live hypothesis seen so far, so a
// segment that never produces a properly ended trace can still
// promote something (§4.4 Fallback). Called once per step regardless
// of whether end-processing is active.
func (s *SearchSpace) updateFallback() {
	for _, ti := range s.registry.All() {
		for _, lh := range s.step.Labels(ti.Labels) {
			if s.fallback.valid && lh.Prospect >= s.fallback.prospect {
				continue
			}
			s.fallback = fallbackCandidate{
				valid:     true,
				traceRef:  lh.TraceRef,
				prospect:  lh.Prospect,
				lmHistory: ti.LookaheadHistory,
				nLabels:   lh.NLabels,
				nWords:    lh.NWords,
			}
		}
	}
}

// endProcessing is driver step 11: only meaningful for topologies that
// asynchronously produce end traces (label-sync, alignment-sync). A
// hypothesis that ends is moved into the end-trace pool and stops
// being expanded; the pool is then pruned independently and, if step
// re-normalisation is on, every end trace this step receives the
// derived length term.
func (s *SearchSpace) endProcessing() {
	s.updateFallback()

	if !s.caps.NeedEndProcess {
		return
	}

	all := s.step.AllLabels()
	write := 0
	endedThisStep := 0
	for _, ti := range sortedInstances(s) {
		begin := write
		for _, lh := range all[ti.Labels.Begin:ti.Labels.End] {
			s.stepSumScore = logSumExp(s.stepSumScore, -lh.Prospect)
			if s.hasEnded(lh) {
				s.endTraces = append(s.endTraces, EndTrace{TraceRef: lh.TraceRef, Prospect: lh.Prospect, Step: s.position})
				s.stepEndScore = logSumExp(s.stepEndScore, -lh.Prospect)
				endedThisStep++
				continue
			}
			all[write] = lh
			write++
		}
		ti.Labels = beam.Range{Begin: begin, End: write}
	}
	s.step.SetLabels(all[:write])

	s.pruneEndTraces()

	if s.cfg.StepRenormalization.StepReNormalization && endedThisStep > 0 {
		s.applyStepRenormalization()
	}
}

// pruneEndTraces keeps the end-trace pool within trace-pruning's
// margin and limit, the pool-independent counterpart of word-end
// pruning.
func (s *SearchSpace) pruneEndTraces() {
	if len(s.endTraces) == 0 {
		return
	}
	best := scorer.LogZero
	for _, et := range s.endTraces {
		if et.Prospect < best {
			best = et.Prospect
		}
	}
	score := func(et EndTrace) scorer.Score { return et.Prospect }
	margin := scorer.Score(s.cfg.TracePruning.Margin)
	kept := beam.ScorePrune(s.endTraces, score, best, margin)
	if len(kept) > s.cfg.TracePruning.Limit && s.cfg.Pruning.HistogramPruningBins > 0 {
		kept = beam.HistogramPrune(kept, score, best, best+margin, s.cfg.Pruning.HistogramPruningBins, s.cfg.TracePruning.Limit)
	}
	s.endTraces = kept
}

// applyStepRenormalization folds this step's derived length term into
// every end trace produced so far (§4.4): stepAccuLenScore grows by
// -log1p(-exp(stepEndScore - stepSumScore)), scaled by
// step-length-scale, and step-length-only drops the sequence-posterior
// term and keeps only the length contribution.
func (s *SearchSpace) applyStepRenormalization() {
	diff := float64(s.stepEndScore - s.stepSumScore)
	if diff > 0 {
		diff = 0
	}
	length := scorer.Score(-math.Log1p(-math.Exp(diff))) * scorer.Score(s.cfg.StepRenormalization.StepLengthScale)

	s.stepAccuLenScore += length
	for i := range s.endTraces {
		if s.cfg.StepRenormalization.StepLengthOnly {
			s.endTraces[i].Prospect = s.endTraces[i].Prospect + length
		} else {
			s.endTraces[i].Prospect = s.endTraces[i].Prospect + s.stepAccuLenScore
		}
	}
}
