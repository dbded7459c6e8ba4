// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/scorer"
)

// UnknownLabelPolicy controls how a lexicon label unknown to the
// scorer is handled during build.
type UnknownLabelPolicy uint8

const (
	UnknownDrop UnknownLabelPolicy = iota
	UnknownMapToUnk
)

// Config parameterises Build across all four topologies.
type Config struct {
	Topology       Topology
	SkipSilence    bool
	UnknownPolicy  UnknownLabelPolicy
	TokenLabel     func(token string) (label int32, ok bool) // Subword/label lookup, e.g. scorer vocab
	PhonemeLabel   func(p lexicon.PhonemeID) (label int32, ok bool)
	UnknownLabel   int32
	HMM            *HMMSource // required iff Topology == TopologyHMM
}

// ConfigFingerprint returns a deterministic summary of the build
// configuration, used as part of the image's config checksum.
func (c Config) ConfigFingerprint() string {
	return fmt.Sprintf("topo=%d skipSilence=%v unkPolicy=%d unkLabel=%d hasHMM=%v",
		c.Topology, c.SkipSilence, c.UnknownPolicy, c.UnknownLabel, c.HMM != nil)
}

// Build constructs a Tree from a lexicon and the label scorer's
// capabilities, dispatching on cfg.Topology.
// Determinism: identical cfg + lexicon always yields an identical
// tree, since every topology builder below processes lemmas in a
// fixed, sorted order.
func Build(cfg Config, lex *lexicon.Lexicon, caps scorer.Capabilities) (*Tree, error) {
	switch cfg.Topology {
	case TopologyWord:
		return buildWord(cfg, lex)
	case TopologySubword:
		return buildSubword(cfg, lex)
	case TopologyPhoneme:
		return buildPhoneme(cfg, lex)
	case TopologyHMM:
		if cfg.HMM == nil {
			return nil, fmt.Errorf("lpt: HMM topology requires Config.HMM")
		}
		return buildHMM(cfg, lex)
	default:
		return nil, fmt.Errorf("lpt: unknown topology %d", cfg.Topology)
	}
}

// sortedLemmaIDs returns lex's lemma ids in a fixed, deterministic order.
func sortedLemmaIDs(lex *lexicon.Lexicon) []lexicon.LemmaID {
	ids := make([]lexicon.LemmaID, 0, len(lex.Lemmas))
	for id := range lex.Lemmas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func skipLemma(cfg Config, lex *lexicon.Lexicon, id lexicon.LemmaID) bool {
	return cfg.SkipSilence && lex.HasSilence && id == lex.SilenceLemma
}

// splitSyntacticTokens mirrors the original's whitespace-separated
// subword-chain rule.
func splitSyntacticTokens(name string) []string {
	return strings.Fields(name)
}
