// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"testing"

	"github.com/gaissmai/lvcsr/config"
	"github.com/gaissmai/lvcsr/internal/beam"
	"github.com/gaissmai/lvcsr/internal/lmla"
	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/internal/trace"
	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/lm"
	"github.com/gaissmai/lvcsr/scorer"
)

// buildCatCarTree builds the same two-lemma phoneme-topology tree the
// look-ahead tests use: CAT and CAR sharing a /k/ prefix.
func buildCatCarTree(t *testing.T) (*lpt.Tree, *lexicon.Lexicon) {
	t.Helper()
	lex := lexicon.New()
	phon := map[string]lexicon.PhonemeID{"k": 0, "ae": 1, "t": 2, "r": 3, "aa": 4}
	idToLabel := map[lexicon.PhonemeID]int32{0: 0, 1: 1, 2: 2, 3: 3, 4: 4}

	catPron := lexicon.Pronunciation{ID: 0, Lemma: 0, Phonemes: []lexicon.PhonemeID{phon["k"], phon["ae"], phon["t"]}}
	lex.AddLemma(lexicon.Lemma{ID: 0, Name: "CAT", SyntacticTokens: []string{"CAT"}, Pronunciations: []lexicon.PronunciationID{0}}, catPron)

	carPron := lexicon.Pronunciation{ID: 1, Lemma: 1, Phonemes: []lexicon.PhonemeID{phon["k"], phon["aa"], phon["r"]}}
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

// fixedLM scores every sequence with a constant, history-independent
// weight, enough to drive PromoteFallback/GetSentenceEnd tests without
// pulling in a real back-off model.
type fixedLM struct {
	endScore scorer.Score
}

func (m fixedLM) StartHistory() lm.History                             { return 0 }
func (m fixedLM) ExtendedHistory(h lm.History, tok lm.Token) lm.History { return h + 1 }
func (m fixedLM) ReducedHistory(h lm.History, order int) lm.History    { return 0 }
func (m fixedLM) SentenceEndScore(h lm.History) scorer.Score           { return m.endScore }

func (fixedLM) GetBatch(history lm.History, req lm.BatchRequest, out []scorer.Score) error {
	for i := range req.Sequences {
		out[i] = 1.0
	}
	return nil
}

// newTestSpace builds a SearchSpace with every field a pure-function
// test might touch pre-populated with harmless zero values, letting
// each test overwrite only what it exercises.
func newTestSpace(t *testing.T, tree *lpt.Tree, lex *lexicon.Lexicon) *SearchSpace {
	t.Helper()
	cfg := config.Default()
	lm := fixedLM{}
	return &SearchSpace{
		cfg:          cfg,
		tree:         tree,
		lex:          lex,
		lmModel:      lm,
		lookahead:    lmla.NewCache(lmla.Build(tree, lex, lm), lm),
		caps:         scorer.Capabilities{},
		arena:        trace.NewArena(),
		registry:     beam.NewRegistry(cfg.InstanceLifecycle.InstanceDeletionTolerance),
		step:         beam.NewStep(cfg.Pruning.LabelPruningLimit, cfg.Pruning.WordEndPruningLimit),
		stepSumScore: scorer.LogZero,
		stepEndScore: scorer.LogZero,
	}
}
