// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package beam

import (
	"github.com/gaissmai/lvcsr/internal/lmla"
	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/internal/trace"
	"github.com/gaissmai/lvcsr/lm"
	"github.com/gaissmai/lvcsr/scorer"
)

// Range is a half-open [Begin, End) window into a flat hypothesis
// array: label hypotheses and word-end hypotheses live in two flat
// arrays shared across all tree instances, each instance owning a
// [begin, end) slice of one.
type Range struct {
	Begin, End int
}

func (r Range) Len() int { return r.End - r.Begin }

// Instance is a runtime activation of the lexical prefix tree scoped
// to a recombination-LM history.
type Instance struct {
	Key scorer.History // recombination-LM history this instance is scoped to

	ScoringHistory   scorer.History
	LookaheadHistory lm.History

	lookahead      lmla.ScoreVector
	lookaheadReady bool

	Labels   Range
	WordEnds Range

	// Entries, EntryNodes and EntryHandles are parallel: Entries[i] is
	// the trace a word-end contributed when it (re-)activated this
	// instance, EntryNodes[i] the LPT transit-root node expand-labels
	// should grow it from, EntryHandles[i] the label-scorer handle that
	// entry's first child should extend from.
	Entries      []trace.ID
	EntryNodes   []lpt.NodeID
	EntryHandles []scorer.History

	lmScoreCache map[lemmaCacheKey]scorer.Score

	InactiveSteps int
}

// NewInstance creates an instance keyed by key, with empty ranges and
// an empty entry-trace list ready for Start-new-trees to populate.
func NewInstance(key, scoringHistory scorer.History, lookaheadHistory lm.History) *Instance {
	return &Instance{
		Key:              key,
		ScoringHistory:   scoringHistory,
		LookaheadHistory: lookaheadHistory,
		lmScoreCache:     make(map[lemmaCacheKey]scorer.Score),
	}
}

// Lookahead lazily populates and returns the instance's LMLA score
// vector. activeLabels and totalLabels feed the cache's beam-share
// dominance test — see lmla.Cache.ScoreFor.
func (ti *Instance) Lookahead(cache *lmla.Cache, activeLabels, totalLabels int, threshold float64) lmla.ScoreVector {
	if !ti.lookaheadReady {
		ti.lookahead = cache.ScoreFor(ti.LookaheadHistory, activeLabels, totalLabels, threshold)
		ti.lookaheadReady = true
	}
	return ti.lookahead
}

// InvalidateLookahead forces the next Lookahead call to recompute,
// used when the instance's history changes across a word boundary.
func (ti *Instance) InvalidateLookahead() { ti.lookaheadReady = false }

// LookaheadCached reports whether this instance already holds a
// computed vector, without triggering a computation of its own — an
// RTF-budget check point uses this to decide whether falling back to
// the unigram vector would actually save work.
func (ti *Instance) LookaheadCached() bool {
	return ti.lookaheadReady
}

// LMScore consults and fills the per-lemma cache.
func (ti *Instance) LMScore(lemma lemmaCacheKey, compute func() scorer.Score) scorer.Score {
	if s, ok := ti.lmScoreCache[lemma]; ok {
		return s
	}
	s := compute()
	ti.lmScoreCache[lemma] = s
	return s
}

// AddEntry enqueues an entry trace for a word-end that just activated
// or re-entered this instance, to be grown from node with starting
// label-scorer handle on the next Expand-labels pass.
func (ti *Instance) AddEntry(id trace.ID, node lpt.NodeID, handle scorer.History) {
	ti.Entries = append(ti.Entries, id)
	ti.EntryNodes = append(ti.EntryNodes, node)
	ti.EntryHandles = append(ti.EntryHandles, handle)
}

// ClearEntries drops the entry list once Expand-labels has consumed
// it for this step.
func (ti *Instance) ClearEntries() {
	ti.Entries = ti.Entries[:0]
	ti.EntryNodes = ti.EntryNodes[:0]
	ti.EntryHandles = ti.EntryHandles[:0]
}

// Empty reports whether the instance currently holds no live
// hypotheses, the condition tracked by InactiveSteps.
func (ti *Instance) Empty() bool {
	return ti.Labels.Len() == 0 && ti.WordEnds.Len() == 0 && len(ti.Entries) == 0
}

// Registry owns the set of active tree instances, keyed by
// recombination history.
type Registry struct {
	instances map[scorer.History]*Instance
	tolerance int
}

// NewRegistry creates an empty registry; tolerance is
// instance_deletion_tolerance.
func NewRegistry(tolerance int) *Registry {
	return &Registry{instances: make(map[scorer.History]*Instance), tolerance: tolerance}
}

// Activate returns the instance for key, creating it via newInstance
// if this is the first time key has been seen.
func (r *Registry) Activate(key scorer.History, newInstance func() *Instance) *Instance {
	if ti, ok := r.instances[key]; ok {
		ti.InactiveSteps = 0
		return ti
	}
	ti := newInstance()
	r.instances[key] = ti
	return ti
}

// Get returns the instance for key without creating one.
func (r *Registry) Get(key scorer.History) (*Instance, bool) {
	ti, ok := r.instances[key]
	return ti, ok
}

// All returns every currently registered instance. The returned slice
// must not be retained across a Cleanup call.
func (r *Registry) All() []*Instance {
	out := make([]*Instance, 0, len(r.instances))
	for _, ti := range r.instances {
		out = append(out, ti)
	}
	return out
}

// Cleanup removes every instance that has been Empty() for more than
// tolerance consecutive steps, advancing the counter for the rest.
// onRemove, if non-nil, is called for each instance just before it is
// dropped, so a caller can release per-history resources it owns
// outside the registry (e.g. a cached look-ahead vector).
func (r *Registry) Cleanup(onRemove func(*Instance)) (removed int) {
	for key, ti := range r.instances {
		if !ti.Empty() {
			continue
		}
		ti.InactiveSteps++
		if ti.InactiveSteps > r.tolerance {
			if onRemove != nil {
				onRemove(ti)
			}
			delete(r.instances, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of active instances.
func (r *Registry) Len() int { return len(r.instances) }
