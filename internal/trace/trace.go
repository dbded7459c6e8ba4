// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package trace implements the back-pointer lattice: an immutable DAG of predecessor
// and sibling links, shared between hypotheses with counted
// ownership, grounded on the same arena/index discipline the lexical
// prefix tree's builder uses for its hash-consed node table.
package trace

import (
	"sync/atomic"

	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/scorer"
)

// ID indexes a Trace inside its owning Arena. None is the absence of
// a predecessor or sibling link, used at the root of a tree instance.
type ID int32

const None ID = -1

// Scores bundles the score fields a trace carries forward.
type Scores struct {
	Acoustic scorer.Score
	LM       scorer.Score
	Prospect scorer.Score
}

// Trace is one immutable node of the back-pointer lattice. Fields are
// set once at New and never mutated afterward; the arena that owns a
// Trace is the only thing that changes, via its refcount.
type Trace struct {
	predecessor ID
	sibling     ID

	Pronunciation lexicon.PronunciationID
	Lemma         lexicon.LemmaID

	Step   int
	Scores Scores

	NLabels int
	NWords  int

	// Position is the segment-start position for segmental topologies,
	// or -1 when the active topology does not track it.
	Position int

	refs atomic.Int32
}

// Predecessor returns the back-pointer to the trace this one extends,
// and whether one exists (false only at a tree instance's root trace).
func (tr *Trace) Predecessor() (ID, bool) { return tr.predecessor, tr.predecessor != None }

// Sibling returns the alternative-path link installed by recombination,
// and whether one exists.
func (tr *Trace) Sibling() (ID, bool) { return tr.sibling, tr.sibling != None }

// Prospect is the pruning/ranking key carried by the trace.
func (tr *Trace) Prospect() scorer.Score { return tr.Scores.Prospect }
