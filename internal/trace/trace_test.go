// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package trace

import (
	"testing"

	"github.com/gaissmai/lvcsr/lexicon"
)

func TestPredecessorChainKeepsAncestorsAlive(t *testing.T) {
	a := NewArena()

	root := a.New(None, false, lexicon.InvalidPronunciation, lexicon.InvalidLemma, 0, Scores{}, 0, 0, -1)
	child := a.New(root, true, 0, 1, 1, Scores{Prospect: -1}, 1, 1, -1)

	a.Release(root) // caller's own reference; root should survive via child's retain
	if a.Get(root) == nil {
		t.Fatal("root freed while child still references it")
	}

	a.Release(child)
	if a.Live() != 0 {
		t.Fatalf("expected both traces freed once the chain unwinds, got %d live", a.Live())
	}
}

func TestReachableWithinHopBudget(t *testing.T) {
	a := NewArena()
	root := a.New(None, false, lexicon.InvalidPronunciation, lexicon.InvalidLemma, 0, Scores{}, 0, 0, -1)
	n1 := a.New(root, true, 0, 0, 1, Scores{}, 1, 0, -1)
	n2 := a.New(n1, true, 0, 0, 2, Scores{}, 2, 0, -1)

	if !a.Reachable(n2, 2) {
		t.Fatal("root should be reachable within 2 hops")
	}
	if a.Reachable(n2, 1) {
		t.Fatal("root should not be reachable within 1 hop")
	}
}

func TestPruneEmptySiblingsDropsContentFreeLemmas(t *testing.T) {
	a := NewArena()
	lex := lexicon.New()
	lex.AddLemma(lexicon.Lemma{ID: 0, Name: "CAT", SyntacticTokens: []string{"CAT"}})
	lex.AddLemma(lexicon.Lemma{ID: 1, Name: "<eps>"}) // no syntactic tokens

	root := a.New(None, false, lexicon.InvalidPronunciation, lexicon.InvalidLemma, 0, Scores{}, 0, 0, -1)
	best := a.New(root, true, 0, 0, 1, Scores{Prospect: -2}, 1, 1, -1)
	empty := a.New(root, true, 0, 1, 1, Scores{Prospect: -1}, 1, 1, -1)
	a.SetSibling(best, empty)

	a.PruneEmptySiblings(best, lex)

	if sib, ok := a.Get(best).Sibling(); ok {
		t.Fatalf("expected empty-lemma sibling to be pruned, still linked to %d", sib)
	}
}
