// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpt

import "github.com/gaissmai/lvcsr/lexicon"

// ActivateLoop adds a self-successor to every non-root, non-transit-root
// node. Transit-roots are skipped because
// they carry InvalidLabel and looping on them would let the search
// consume input without ever scoring a real class.
func (t *Tree) ActivateLoop() {
	for id := range t.nodes {
		n := NodeID(id)
		if n == Root || t.IsRootType(n) {
			continue
		}
		t.nodes[id].hasSelfLoop = true
		insertSorted(&t.nodes[id].successors, n)
	}
}

// ActivateEndLabel splices an end-label node in as a direct successor
// of the root, reusing an existing one if present, and ensures it
// carries an exit for endLemma.
func (t *Tree) ActivateEndLabel(endLabel int32, endLemma lexicon.LemmaID, useNullLemma bool) NodeID {
	for _, succ := range t.nodes[Root].successors {
		if t.nodes[succ].label == endLabel {
			t.ensureEndExit(succ, endLemma, useNullLemma)
			t.endLabelNode, t.hasEndLabel = succ, true
			return succ
		}
	}

	t.nodes = append(t.nodes, node{label: endLabel, class: ClassSpecial})
	id := NodeID(len(t.nodes) - 1)
	insertSorted(&t.nodes[Root].successors, id)

	t.ensureEndExit(id, endLemma, useNullLemma)
	t.endLabelNode, t.hasEndLabel = id, true
	return id
}

func (t *Tree) ensureEndExit(n NodeID, endLemma lexicon.LemmaID, useNullLemma bool) {
	lemma := endLemma
	if useNullLemma {
		lemma = lexicon.InvalidLemma
	}

	for _, eid := range t.nodes[n].exits {
		if t.exits[eid].Lemma == lemma {
			return
		}
	}

	eid := ExitID(len(t.exits))
	t.exits = append(t.exits, Exit{
		Pronunciation: lexicon.InvalidPronunciation,
		Lemma:         lemma,
		TransitRoot:   Root,
	})
	t.nodes[n].exits = append(t.nodes[n].exits, eid)
}

func insertSorted(s *[]NodeID, v NodeID) {
	succ := *s
	i := 0
	for i < len(succ) && succ[i] < v {
		i++
	}
	if i < len(succ) && succ[i] == v {
		return
	}
	succ = append(succ, 0)
	copy(succ[i+1:], succ[i:])
	succ[i] = v
	*s = succ
}
