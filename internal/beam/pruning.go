// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package beam

import (
	"sort"

	"github.com/gaissmai/lvcsr/scorer"
)

// ScorePrune keeps every item whose score is within margin of best.
// margin == scorer.LogZero (+inf) disables pruning.
func ScorePrune[T any](items []T, score func(T) scorer.Score, best, margin scorer.Score) []T {
	if margin == scorer.LogZero {
		return items
	}
	threshold := best + margin
	out := items[:0]
	for _, it := range items {
		if score(it) <= threshold {
			out = append(out, it)
		}
	}
	return out
}

// HistogramPrune keeps at most limit items, approximating a score-rank
// cut with a bucketed histogram between best and threshold rather than
// a full sort.
func HistogramPrune[T any](items []T, score func(T) scorer.Score, best, threshold scorer.Score, bins, limit int) []T {
	if len(items) <= limit || bins <= 0 {
		return items
	}

	width := (threshold - best) / scorer.Score(bins)
	if width <= 0 {
		return items
	}

	counts := make([]int, bins+1)
	bucketOf := func(s scorer.Score) int {
		b := int((s - best) / width)
		if b < 0 {
			b = 0
		}
		if b > bins {
			b = bins
		}
		return b
	}

	for _, it := range items {
		counts[bucketOf(score(it))]++
	}

	cum, cut := 0, bins
	for b := 0; b <= bins; b++ {
		cum += counts[b]
		if cum >= limit {
			cut = b
			break
		}
	}
	cutScore := best + scorer.Score(cut+1)*width

	out := items[:0]
	for _, it := range items {
		if score(it) <= cutScore {
			out = append(out, it)
		}
	}
	return out
}

// WordLengthBalancePrune applies ScorePrune independently within each
// word-length bucket, so a long hypothesis is compared only against
// others of the same word count rather than against the global best.
func WordLengthBalancePrune[T any](items []T, score func(T) scorer.Score, nWords func(T) int, margin scorer.Score) []T {
	bestByBucket := make(map[int]scorer.Score)
	for _, it := range items {
		b, s := nWords(it), score(it)
		if cur, ok := bestByBucket[b]; !ok || s < cur {
			bestByBucket[b] = s
		}
	}

	if margin == scorer.LogZero {
		return items
	}

	out := items[:0]
	for _, it := range items {
		if score(it) <= bestByBucket[nWords(it)]+margin {
			out = append(out, it)
		}
	}
	return out
}

// FixedBeamPrune keeps the limit lowest-scoring items across one or
// more heterogeneous pools merged under a single budget — e.g.
// expandable labels, word-ends and end-traces sharing one bound. The
// returned slice holds the surviving original indices, sorted by
// ascending score.
func FixedBeamPrune(scores []scorer.Score, limit int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })
	if limit >= 0 && limit < len(idx) {
		idx = idx[:limit]
	}
	return idx
}
