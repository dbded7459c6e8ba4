// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpt

import (
	"testing"

	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/scorer"
)

func phonemeVocab() (map[string]lexicon.PhonemeID, map[lexicon.PhonemeID]int32) {
	names := []string{"k", "ae", "t", "r", "aa"}
	nameToID := make(map[string]lexicon.PhonemeID)
	idToLabel := make(map[lexicon.PhonemeID]int32)
	for i, n := range names {
		id := lexicon.PhonemeID(i)
		nameToID[n] = id
		idToLabel[id] = int32(i)
	}
	return nameToID, idToLabel
}

func buildCatCarLexicon() (*lexicon.Lexicon, map[string]lexicon.PhonemeID) {
	lex := lexicon.New()
	names, _ := phonemeVocab()

	catPron := lexicon.Pronunciation{ID: 0, Lemma: 0, Phonemes: []lexicon.PhonemeID{names["k"], names["ae"], names["t"]}}
	lex.AddLemma(lexicon.Lemma{ID: 0, Name: "CAT", Pronunciations: []lexicon.PronunciationID{0}}, catPron)

	carPron := lexicon.Pronunciation{ID: 1, Lemma: 1, Phonemes: []lexicon.PhonemeID{names["k"], names["aa"], names["r"]}}
	lex.AddLemma(lexicon.Lemma{ID: 1, Name: "CAR", Pronunciations: []lexicon.PronunciationID{1}}, carPron)

	return lex, names
}

func TestBuildPhonemeSharesPrefix(t *testing.T) {
	lex, names := buildCatCarLexicon()
	_, idToLabel := phonemeVocab()

	cfg := Config{
		Topology: TopologyPhoneme,
		PhonemeLabel: func(p lexicon.PhonemeID) (int32, bool) {
			l, ok := idToLabel[p]
			return l, ok
		},
	}

	tree, err := Build(cfg, lex, scorer.Capabilities{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := tree.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if tree.NumSuccessors(Root) != 1 {
		t.Fatalf("expected CAT and CAR to share the initial /k/ node, got %d root successors", tree.NumSuccessors(Root))
	}

	kNode := tree.Successors(Root, nil)[0]
	if tree.LabelOf(kNode) != idToLabel[names["k"]] {
		t.Fatalf("root successor does not carry the /k/ label")
	}
	if tree.NumSuccessors(kNode) != 2 {
		t.Fatalf("expected /k/ to branch into /ae/ and /aa/, got %d successors", tree.NumSuccessors(kNode))
	}

	if tree.NumExits() != 2 {
		t.Fatalf("expected one exit per pronunciation, got %d", tree.NumExits())
	}
}

func TestBuildWordOneChainPerLemma(t *testing.T) {
	lex := lexicon.New()
	lex.AddLemma(lexicon.Lemma{ID: 0, Name: "CAT"})
	lex.AddLemma(lexicon.Lemma{ID: 1, Name: "CAR"})

	labels := map[string]int32{"CAT": 10, "CAR": 11}
	cfg := Config{
		Topology:   TopologyWord,
		TokenLabel: func(tok string) (int32, bool) { l, ok := labels[tok]; return l, ok },
	}

	tree, err := Build(cfg, lex, scorer.Capabilities{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := tree.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if tree.NumSuccessors(Root) != 2 {
		t.Fatalf("expected 2 root successors (one per lemma), got %d", tree.NumSuccessors(Root))
	}
	for _, s := range tree.Successors(Root, nil) {
		if !tree.HasExit(s) {
			t.Fatalf("word-topology leaf %d must carry an exit", s)
		}
	}
}

func TestBuildSubwordSharesPrefixTokens(t *testing.T) {
	lex := lexicon.New()
	lex.AddLemma(lexicon.Lemma{ID: 0, Name: "un believable"})
	lex.AddLemma(lexicon.Lemma{ID: 1, Name: "un friendly"})

	labels := map[string]int32{"un": 1, "believable": 2, "friendly": 3}
	cfg := Config{
		Topology:   TopologySubword,
		TokenLabel: func(tok string) (int32, bool) { l, ok := labels[tok]; return l, ok },
	}

	tree, err := Build(cfg, lex, scorer.Capabilities{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := tree.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if tree.NumSuccessors(Root) != 1 {
		t.Fatalf("expected shared 'un' prefix, got %d root successors", tree.NumSuccessors(Root))
	}
	un := tree.Successors(Root, nil)[0]
	if tree.NumSuccessors(un) != 2 {
		t.Fatalf("expected 'un' to branch into 'believable' and 'friendly', got %d", tree.NumSuccessors(un))
	}
}

func TestActivateLoopSkipsRootTypes(t *testing.T) {
	lex, names := buildCatCarLexicon()
	_, idToLabel := phonemeVocab()
	cfg := Config{
		Topology:     TopologyPhoneme,
		PhonemeLabel: func(p lexicon.PhonemeID) (int32, bool) { l, ok := idToLabel[p]; return l, ok },
	}
	_ = names

	tree, err := Build(cfg, lex, scorer.Capabilities{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tree.ActivateLoop()

	if tree.HasSelfLoop(Root) {
		t.Fatal("root must never receive a self-loop")
	}

	kNode := tree.Successors(Root, nil)[0]
	if !tree.HasSelfLoop(kNode) {
		t.Fatal("non-root node must receive a self-loop after ActivateLoop")
	}
}

func TestBuildHMMTiedStateGetsOneExitNotOnePerPredecessor(t *testing.T) {
	lex := lexicon.New()
	lex.AddLemma(lexicon.Lemma{ID: 0, Name: "CAT"})

	// Root branches into two predecessor states (1 and 2) that both
	// transition into the same tied state (3), the state-tying graph's
	// whole point. State 3 carries the word's exit.
	src := &HMMSource{
		Root: 0,
		States: []HMMState{
			{Label: InvalidLabel, IsTransitRoot: true, Successors: []int{1, 2}},
			{Label: 1, Successors: []int{3}},
			{Label: 2, Successors: []int{3}},
			{Label: 3, Exit: &Exit{Lemma: 0, TransitRoot: Root}},
		},
	}

	cfg := Config{Topology: TopologyHMM, HMM: src}

	tree, err := Build(cfg, lex, scorer.Capabilities{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := tree.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if tree.NumExits() != 1 {
		t.Fatalf("expected exactly one exit for the tied state reached by two predecessors, got %d", tree.NumExits())
	}

	if tree.NumSuccessors(Root) != 2 {
		t.Fatalf("expected root to branch into both predecessor states, got %d", tree.NumSuccessors(Root))
	}

	tied := -1
	for _, s := range tree.Successors(Root, nil) {
		for _, c := range tree.Successors(s, nil) {
			tied = int(c)
		}
	}
	if tied == -1 {
		t.Fatal("expected both predecessor states to converge on a single tied successor")
	}
	if len(tree.Exits(NodeID(tied))) != 1 {
		t.Fatalf("tied state carries %d exits, want 1", len(tree.Exits(NodeID(tied))))
	}
}

func TestActivateEndLabelReusesExistingNode(t *testing.T) {
	lex := lexicon.New()
	lex.AddLemma(lexicon.Lemma{ID: 0, Name: "CAT"})
	labels := map[string]int32{"CAT": 5, "<end>": 99}
	cfg := Config{Topology: TopologyWord, TokenLabel: func(tok string) (int32, bool) { l, ok := labels[tok]; return l, ok }}

	tree, err := Build(cfg, lex, scorer.Capabilities{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	first := tree.ActivateEndLabel(99, 42, false)
	second := tree.ActivateEndLabel(99, 42, false)

	if first != second {
		t.Fatalf("ActivateEndLabel must reuse the existing end-label node: got %d then %d", first, second)
	}
	if !tree.HasExit(first) {
		t.Fatal("end-label node must carry an exit for the end lemma")
	}
}
