// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package trace

import "github.com/gaissmai/lvcsr/lexicon"

// Reachable reports whether root's predecessor chain reaches a trace
// with no predecessor within maxHops steps.
func (a *Arena) Reachable(root ID, maxHops int) bool {
	cur := root
	for hops := 0; hops <= maxHops; hops++ {
		tr := a.Get(cur)
		if tr == nil {
			return false
		}
		pred, ok := tr.Predecessor()
		if !ok {
			return true
		}
		cur = pred
	}
	return false
}

// PruneEmptySiblings drops sibling entries whose lemma contributes
// nothing to LM scoring from the alternative-path list rooted at id:
// such siblings only bloat the lattice without adding a
// distinguishable path for downstream rescoring. The dropped traces'
// reference counts are released.
func (a *Arena) PruneEmptySiblings(id ID, lex *lexicon.Lexicon) {
	tr := a.Get(id)
	if tr == nil {
		return
	}

	cur := tr.sibling
	prevID := id
	for cur != None {
		next := a.Get(cur).sibling
		lemma, ok := lex.Lemmas[a.Get(cur).Lemma]
		if ok && lemma.HasEmptySyntacticTokenSequence() {
			a.traces[prevID].sibling = next
			a.Release(cur)
		} else {
			prevID = cur
		}
		cur = next
	}
}
