// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package beam holds the in-beam state objects the search space
// drives: label and word-end hypotheses, the tree-instance registry
// that scopes them to an LM history, and the pruning helpers that
// keep each step's arrays bounded.
package beam

import (
	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/internal/trace"
	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/lm"
	"github.com/gaissmai/lvcsr/scorer"
)

// LabelHypothesis is a live beam element attached to one LPT node.
type LabelHypothesis struct {
	Node lpt.NodeID

	Score    scorer.Score // cumulative acoustic + LM
	Prospect scorer.Score // pruning key: Score + lmla look-ahead

	TraceRef trace.ID
	History  scorer.History

	NLabels int
	NWords  int

	Position int // relative position for blank-based transducer topologies, -1 if unused

	IsBlank      bool
	CameFromLoop bool
	LoopCount    int

	RecombinationHash uint64
}

// WordEndHypothesis is a label hypothesis that has just consumed an
// exit. Early word-ends (created before global pruning) carry
// histories that have not yet been extended past the exit's lemma —
// the search's extendHistoriesOnSurvivors performs that extension only
// for survivors.
type WordEndHypothesis struct {
	Exit lpt.ExitID

	Score    scorer.Score
	Prospect scorer.Score

	TraceRef trace.ID

	// LabelHandle is the label-scorer context at the moment of exit, the
	// source of the reduced-label-hash half of the recombination key.
	LabelHandle scorer.History

	LMHistory            lm.History // post-exit LM-scoring history
	RecombinationHistory lm.History
	LookaheadHistory     lm.History

	NLabels int
	NWords  int

	Position int

	HistoriesExtended bool
}

// mix64 combines two hash components with a 64-bit finaliser (the
// splitmix64 mix step), adequate associative-in-practice mixing for
// recombination keys.
func mix64(a, b uint64) uint64 {
	h := a*0x9E3779B97F4A7C15 + b
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

// LabelRecombinationKey computes the grouping key for within-tree
// recombination: (node, reduced-label-history, position). The
// reduction itself is delegated to the label scorer, whose
// ReducedHash knows how its own history handle decomposes into an
// order-k equivalence class.
func LabelRecombinationKey(sc scorer.LabelScorer, handle scorer.History, order int, node lpt.NodeID, position int) uint64 {
	k := sc.ReducedHash(handle, order)
	k = mix64(k, uint64(node)<<20)
	return mix64(k, uint64(int64(position)))
}

// ReducedExtendedLabelKey combines the label scorer's reduce-by-(k-1)
// hash with a fresh symbol x, used for an early word-end whose history
// has not yet been extended past the triggering label.
func ReducedExtendedLabelKey(sc scorer.LabelScorer, handle scorer.History, order int, x uint64) uint64 {
	base := sc.ReducedHash(handle, order-1)
	return mix64(base, x)
}

// WordEndRecombinationKey computes the grouping key for word-end
// recombination: (reduced word history, reduced label history,
// transit root, position).
func WordEndRecombinationKey(lmModel lm.LanguageModel, sc scorer.LabelScorer, wordHist lm.History, wordOrder int, labelHandle scorer.History, labelOrder int, transitRoot lpt.NodeID, position int) uint64 {
	reducedWord := lmModel.ReducedHistory(wordHist, wordOrder)
	k := mix64(uint64(reducedWord), sc.ReducedHash(labelHandle, labelOrder))
	k = mix64(k, uint64(transitRoot)<<20)
	return mix64(k, uint64(int64(position)))
}

// lemmaCacheKey is used by the tree instance's small per-lemma LM
// score cache.
type lemmaCacheKey = lexicon.LemmaID
