// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpt

import "github.com/gaissmai/lvcsr/lexicon"

// buildSubword implements the Subword topology: each lemma contributes
// one chain of whitespace-separated tokens; tokens unknown
// to the scorer map to the unknown label or are skipped per
// cfg.UnknownPolicy. Shared prefixes across lemmas are hash-consed the
// same way phoneme pronunciations are.
func buildSubword(cfg Config, lex *lexicon.Lexicon) (*Tree, error) {
	b := newBuilder()

	for _, id := range sortedLemmaIDs(lex) {
		if skipLemma(cfg, lex, id) {
			continue
		}
		lemma := lex.Lemmas[id]

		tokens := splitSyntacticTokens(lemma.Name)
		if len(tokens) == 0 {
			continue
		}

		parent := Root
		ok := true
		for _, tok := range tokens {
			label, found := cfg.TokenLabel(tok)
			if !found {
				switch cfg.UnknownPolicy {
				case UnknownMapToUnk:
					label = cfg.UnknownLabel
				default:
					ok = false
				}
			}
			if !ok {
				break
			}
			parent = b.chainStep(parent, label, ClassDefault)
		}
		if !ok {
			continue
		}

		b.addExit(parent, Exit{
			Pronunciation: lexicon.InvalidPronunciation,
			Lemma:         id,
			TransitRoot:   Root,
		})
	}

	return b.finish(TopologySubword, lex.SilenceLemma, Root, lex.HasSilence), nil
}
