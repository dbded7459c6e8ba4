// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lmla

import (
	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/lm"
	"github.com/gaissmai/lvcsr/scorer"
)

// populate initialises every node to scorer.LogZero, submits the
// batch of exit requests to lmModel under history, propagates minima
// in reverse-topological (descending id) order, then clamps root and
// end-label-like nodes to zero so they never bias pruning.
func (l *LMLA) populate(lmModel lm.LanguageModel, history lm.History) ScoreVector {
	out := make(ScoreVector, l.numNodes)
	for i := range out {
		out[i] = scorer.LogZero
	}

	if len(l.batchSeqs) > 0 {
		results := make([]scorer.Score, len(l.batchSeqs))
		req := lm.BatchRequest{Sequences: l.batchSeqs}
		if err := lmModel.GetBatch(history, req, results); err == nil {
			for _, er := range l.exitRequests {
				if results[er.batchSlot] < out[er.node] {
					out[er.node] = results[er.batchSlot]
				}
			}
		}
	}

	for n := l.numNodes - 1; n >= 0; n-- {
		best := out[n]
		for _, succ := range l.successors[n] {
			if out[succ] < best {
				best = out[succ]
			}
		}
		out[n] = best
	}

	for n, rootLike := range l.rootLike {
		if rootLike {
			out[n] = 0
		}
	}

	return out
}

// Cache holds per-history score vectors and decides, via a dominance
// test, whether a history is worth the full propagation pass or
// should fall back to the precomputed unigram vector.
type Cache struct {
	lmla    *LMLA
	lm      lm.LanguageModel
	vectors map[lm.History]ScoreVector
}

// NewCache creates an empty per-history cache over lmla.
func NewCache(l *LMLA, lmModel lm.LanguageModel) *Cache {
	return &Cache{lmla: l, lm: lmModel, vectors: make(map[lm.History]ScoreVector)}
}

// ScoreFor returns the score vector for history, computing and caching
// it on first use. activeLabels is the number of distinct labels
// currently alive in the tree instance this history belongs to,
// totalLabels the number alive across the whole beam; when this
// instance's share activeLabels/totalLabels falls below threshold the
// cheaper unigram vector is returned instead of running a full
// propagation pass, since the dominance gained from full-order
// look-ahead is negligible for an instance holding only a sliver of
// the beam.
func (c *Cache) ScoreFor(history lm.History, activeLabels, totalLabels int, threshold float64) ScoreVector {
	if threshold > 0 && totalLabels > 0 && float64(activeLabels)/float64(totalLabels) < threshold {
		return c.lmla.Unigram()
	}

	if v, ok := c.vectors[history]; ok {
		return v
	}

	v := c.lmla.populate(c.lm, history)
	c.vectors[history] = v
	return v
}

// Forget drops a cached vector, freeing it once its owning tree
// instance is destroyed.
func (c *Cache) Forget(history lm.History) {
	delete(c.vectors, history)
}

// NodeOf resolves the LMLA node an LPT node was compressed into, so a
// caller holding only a score vector can index it from an LPT node.
func (c *Cache) NodeOf(n lpt.NodeID) NodeID {
	return c.lmla.NodeOf(n)
}

// Unigram exposes the cache's precomputed fallback vector directly,
// for callers that need it outside ScoreFor's dominance test.
func (c *Cache) Unigram() ScoreVector {
	return c.lmla.Unigram()
}
