// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"sort"

	"github.com/gaissmai/lvcsr/internal/beam"
	"github.com/gaissmai/lvcsr/scorer"
)

// sortedInstances returns the registry's active instances ordered by
// their Labels range offset — the physical order their hypotheses
// occupy in the shared backing array, required before any in-place
// compaction pass over that array.
func sortedInstances(s *SearchSpace) []*beam.Instance {
	instances := s.registry.All()
	sort.Slice(instances, func(i, j int) bool { return instances[i].Labels.Begin < instances[j].Labels.Begin })
	return instances
}

// lengthAdjusted returns lh's prospect shifted by word_length_scale ·
// its word count when word-length-balance is active, the comparison
// lens pruneLabels and its threshold use instead of the raw prospect
// — a longer hypothesis earns a bigger subtraction, so it can survive
// (or win) against a shorter one whose raw prospect is better by less
// than the scaled length difference. Returns lh.Prospect unchanged
// when word-length-balance is off.
func (s *SearchSpace) lengthAdjusted(lh beam.LabelHypothesis) scorer.Score {
	if !s.cfg.GlobalPruning.WordLengthBalance {
		return lh.Prospect
	}
	return lh.Prospect - scorer.Score(s.cfg.GlobalPruning.WordLengthScale)*scorer.Score(lh.NWords)
}

// pruneLabels is driver step 4: keep hypotheses within label_pruning
// of the best length-adjusted prospect, then histogram-prune to
// label_pruning_limit — skipped in balance mode, since histogram
// pruning is unsafe across buckets of differing score scale.
func (s *SearchSpace) pruneLabels() {
	all := s.step.AllLabels()
	if len(all) == 0 {
		return
	}

	best := scorer.LogZero
	for _, lh := range all {
		if adj := s.lengthAdjusted(lh); adj < best {
			best = adj
		}
	}

	instances := sortedInstances(s)

	type bound struct {
		ti         *beam.Instance
		begin, end int
	}
	bounds := make([]bound, 0, len(instances))

	write := 0
	for _, ti := range instances {
		begin := write
		for _, lh := range all[ti.Labels.Begin:ti.Labels.End] {
			if s.cfg.Pruning.LabelPruning == scorer.LogZero || s.lengthAdjusted(lh) <= best+s.cfg.Pruning.LabelPruning {
				all[write] = lh
				write++
			}
		}
		bounds = append(bounds, bound{ti, begin, write})
	}
	all = all[:write]

	if !s.cfg.GlobalPruning.WordLengthBalance && len(all) > s.cfg.Pruning.LabelPruningLimit && s.cfg.Pruning.HistogramPruningBins > 0 {
		threshold := best + s.cfg.Pruning.LabelPruning
		width := (threshold - best) / scorer.Score(s.cfg.Pruning.HistogramPruningBins)
		if width > 0 {
			bins := s.cfg.Pruning.HistogramPruningBins
			counts := make([]int, bins+1)
			bucketOf := func(sc scorer.Score) int {
				b := int((sc - best) / width)
				if b < 0 {
					b = 0
				}
				if b > bins {
					b = bins
				}
				return b
			}
			for _, lh := range all {
				counts[bucketOf(lh.Prospect)]++
			}
			cum, cut := 0, bins
			for b := 0; b <= bins; b++ {
				cum += counts[b]
				if cum >= s.cfg.Pruning.LabelPruningLimit {
					cut = b
					break
				}
			}
			cutScore := best + scorer.Score(cut+1)*width

			write2 := 0
			for i := range bounds {
				begin2 := write2
				for _, lh := range all[bounds[i].begin:bounds[i].end] {
					if lh.Prospect <= cutScore {
						all[write2] = lh
						write2++
					}
				}
				bounds[i].begin, bounds[i].end = begin2, write2
			}
			all = all[:write2]
		}
	}

	s.step.SetLabels(all)
	for _, b := range bounds {
		b.ti.Labels = beam.Range{Begin: b.begin, End: b.end}
	}
}

// wordEndMargin resolves word_end_pruning: a value in (0, 1] is a
// fraction of label_pruning, anything else is an absolute margin.
func (s *SearchSpace) wordEndMargin() scorer.Score {
	m := s.cfg.Pruning.WordEndPruning
	if m > 0 && m <= 1 && s.cfg.Pruning.LabelPruning != scorer.LogZero {
		return m * s.cfg.Pruning.LabelPruning
	}
	return m
}

// globalPrune is driver step 8: plain word-end pruning, or joint
// label+word-end pruning under a common threshold
// (prune_words_with_labels), or fixed-beam pruning across a shared
// budget spanning expandable labels, word-ends and end-traces
// (fixedBeamJointPrune). Early word-ends are a flat pool independent
// of tree instances, so no range bookkeeping is needed for them here.
func (s *SearchSpace) globalPrune(early []beam.WordEndHypothesis) []beam.WordEndHypothesis {
	if len(early) == 0 {
		return early
	}

	if s.cfg.FixedBeam.FixedBeamSearch {
		return s.fixedBeamJointPrune(early)
	}

	best := scorer.LogZero
	for _, wh := range early {
		if wh.Prospect < best {
			best = wh.Prospect
		}
	}
	if s.cfg.GlobalPruning.PruneWordsWithLabels {
		for _, lh := range s.step.AllLabels() {
			if lh.Prospect < best {
				best = lh.Prospect
			}
		}
	}

	margin := s.wordEndMargin()
	score := func(wh beam.WordEndHypothesis) scorer.Score { return wh.Prospect }
	kept := beam.ScorePrune(early, score, best, margin)
	if len(kept) > s.cfg.Pruning.WordEndPruningLimit && s.cfg.Pruning.HistogramPruningBins > 0 {
		threshold := best + margin
		kept = beam.HistogramPrune(kept, score, best, threshold, s.cfg.Pruning.HistogramPruningBins, s.cfg.Pruning.WordEndPruningLimit)
	}
	return kept
}

// fixedBeamJointPrune is driver step 8(c): a single bounded multimap of
// size word_end_pruning_limit shared across the three live pools —
// expandable labels, early word-ends and end-traces — rather than
// bounding each pool independently. beam.FixedBeamPrune ranks the
// concatenated scores once and the surviving indices are partitioned
// back into their owning pool.
func (s *SearchSpace) fixedBeamJointPrune(early []beam.WordEndHypothesis) []beam.WordEndHypothesis {
	labels := s.step.AllLabels()
	nLabels, nEarly, nEnds := len(labels), len(early), len(s.endTraces)

	scores := make([]scorer.Score, 0, nLabels+nEarly+nEnds)
	for _, lh := range labels {
		scores = append(scores, lh.Prospect)
	}
	for _, wh := range early {
		scores = append(scores, wh.Prospect)
	}
	for _, et := range s.endTraces {
		scores = append(scores, et.Prospect)
	}

	idx := beam.FixedBeamPrune(scores, s.cfg.Pruning.WordEndPruningLimit)
	keepLabel := make([]bool, nLabels)
	keepEarly := make([]bool, nEarly)
	keepEnd := make([]bool, nEnds)
	for _, i := range idx {
		switch {
		case i < nLabels:
			keepLabel[i] = true
		case i < nLabels+nEarly:
			keepEarly[i-nLabels] = true
		default:
			keepEnd[i-nLabels-nEarly] = true
		}
	}

	write := 0
	for _, ti := range sortedInstances(s) {
		begin := write
		for i := ti.Labels.Begin; i < ti.Labels.End; i++ {
			if keepLabel[i] {
				labels[write] = labels[i]
				write++
			}
		}
		ti.Labels = beam.Range{Begin: begin, End: write}
	}
	s.step.SetLabels(labels[:write])

	outEarly := early[:0]
	for i, wh := range early {
		if keepEarly[i] {
			outEarly = append(outEarly, wh)
		}
	}

	outEnds := s.endTraces[:0]
	for i, et := range s.endTraces {
		if keepEnd[i] {
			outEnds = append(outEnds, et)
		}
	}
	s.endTraces = outEnds

	return outEarly
}
