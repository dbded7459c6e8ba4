// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lmla

import (
	"testing"

	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/lm"
	"github.com/gaissmai/lvcsr/scorer"
)

func buildCatCarTree(t *testing.T) (*lpt.Tree, *lexicon.Lexicon) {
	t.Helper()
	lex := lexicon.New()
	names := map[string]lexicon.PhonemeID{"k": 0, "ae": 1, "t": 2, "r": 3, "aa": 4}
	idToLabel := map[lexicon.PhonemeID]int32{0: 0, 1: 1, 2: 2, 3: 3, 4: 4}

	catPron := lexicon.Pronunciation{ID: 0, Lemma: 0, Phonemes: []lexicon.PhonemeID{names["k"], names["ae"], names["t"]}}
	lex.AddLemma(lexicon.Lemma{ID: 0, Name: "CAT", SyntacticTokens: []string{"CAT"}, Pronunciations: []lexicon.PronunciationID{0}}, catPron)

	carPron := lexicon.Pronunciation{ID: 1, Lemma: 1, Phonemes: []lexicon.PhonemeID{names["k"], names["aa"], names["r"]}}
	lex.AddLemma(lexicon.Lemma{ID: 1, Name: "CAR", SyntacticTokens: []string{"CAR"}, Pronunciations: []lexicon.PronunciationID{1}}, carPron)

	cfg := lpt.Config{
		Topology: lpt.TopologyPhoneme,
		PhonemeLabel: func(p lexicon.PhonemeID) (int32, bool) {
			l, ok := idToLabel[p]
			return l, ok
		},
	}
	tree, err := lpt.Build(cfg, lex, scorer.Capabilities{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree, lex
}

// fixedLM scores "CAT" cheaper than "CAR" regardless of history.
type fixedLM struct{}

func (fixedLM) StartHistory() lm.History                             { return 0 }
func (fixedLM) ExtendedHistory(h lm.History, tok lm.Token) lm.History { return h + 1 }
func (fixedLM) ReducedHistory(h lm.History, order int) lm.History    { return 0 }
func (fixedLM) SentenceEndScore(h lm.History) scorer.Score           { return 0 }

func (fixedLM) GetBatch(history lm.History, req lm.BatchRequest, out []scorer.Score) error {
	for i, seq := range req.Sequences {
		if len(seq) > 0 && seq[0] == "CAT" {
			out[i] = 1.0
		} else {
			out[i] = 5.0
		}
	}
	return nil
}

func TestBuildClampsRootToZero(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	l := Build(tree, lex, fixedLM{})

	root := l.NodeOf(lpt.Root)
	if got := l.Unigram().Get(root); got != 0 {
		t.Fatalf("root score = %v, want 0", got)
	}
}

func TestPopulatePropagatesMinToSharedPrefix(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	l := Build(tree, lex, fixedLM{})

	kNode := tree.Successors(lpt.Root, nil)[0]
	lmlaK := l.NodeOf(kNode)

	v := l.Unigram()
	if got := v.Get(lmlaK); got != 1.0 {
		t.Fatalf("shared-prefix node score = %v, want min(CAT=1.0, CAR=5.0)=1.0", got)
	}
}

func TestCacheFallsBackToUnigramBelowThreshold(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	l := Build(tree, lex, fixedLM{})
	c := NewCache(l, fixedLM{})

	v := c.ScoreFor(lm.History(42), 1, 10, 0.5)
	if &v[0] != &l.Unigram()[0] {
		t.Fatalf("expected unigram fallback vector to be returned by identity")
	}
}

func TestCacheComputesFullVectorAboveThreshold(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	l := Build(tree, lex, fixedLM{})
	c := NewCache(l, fixedLM{})

	v1 := c.ScoreFor(lm.History(7), 10, 10, 0.5)
	v2 := c.ScoreFor(lm.History(7), 10, 10, 0.5)
	if len(v1) != l.NumNodes() || len(v2) != l.NumNodes() {
		t.Fatalf("expected full-length vectors")
	}
}
