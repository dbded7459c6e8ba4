// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package trace

import "github.com/gaissmai/lvcsr/lexicon"

// Arena owns a set of traces and their reference counts. A trace's
// predecessor link counts as one of its owners — a trace is only
// freed once no hypothesis, no successor trace and no lattice root
// retains it.
type Arena struct {
	traces []Trace
	free   []ID
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// New allocates a trace extending pred (or starting a fresh chain
// when hasPred is false) and returns its id with one reference held
// on behalf of the caller. If hasPred, the new trace also retains
// pred, so the predecessor chain stays alive as long as any successor
// does.
func (a *Arena) New(pred ID, hasPred bool, pron lexicon.PronunciationID, lemma lexicon.LemmaID, step int, scores Scores, nLabels, nWords, position int) ID {
	p := None
	if hasPred {
		p = pred
		a.Retain(p)
	}

	tr := Trace{
		predecessor:   p,
		sibling:       None,
		Pronunciation: pron,
		Lemma:         lemma,
		Step:          step,
		Scores:        scores,
		NLabels:       nLabels,
		NWords:        nWords,
		Position:      position,
	}
	tr.refs.Store(1)

	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.traces[id] = tr
		return id
	}

	a.traces = append(a.traces, tr)
	return ID(len(a.traces) - 1)
}

// Get returns a pointer to the trace identified by id. The pointer is
// only valid until the next call to New, which may grow the backing
// array; hold the ID, not the pointer, across allocations.
func (a *Arena) Get(id ID) *Trace {
	if id == None {
		return nil
	}
	return &a.traces[id]
}

// Retain adds an owner to id.
func (a *Arena) Retain(id ID) {
	if id == None {
		return
	}
	a.traces[id].refs.Add(1)
}

// Release removes an owner from id, recursively releasing its
// predecessor and recycling the slot once the refcount reaches zero.
func (a *Arena) Release(id ID) {
	if id == None {
		return
	}
	if a.traces[id].refs.Add(-1) > 0 {
		return
	}

	pred := a.traces[id].predecessor
	a.traces[id] = Trace{predecessor: None, sibling: None}
	a.free = append(a.free, id)

	if pred != None {
		a.Release(pred)
	}
}

// SetSibling installs the alternative-path link produced when
// recombination merges several entries into one surviving trace. It
// is the one field mutation allowed after New, performed once by the
// recombination step before any other owner observes the trace.
func (a *Arena) SetSibling(id, sibling ID) {
	a.traces[id].sibling = sibling
}

// Live reports the number of traces currently allocated (for tests
// and diagnostics, not consulted by the search loop itself).
func (a *Arena) Live() int {
	return len(a.traces) - len(a.free)
}
