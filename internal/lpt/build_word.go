// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpt

import "github.com/gaissmai/lvcsr/lexicon"

// buildWord implements the Word topology: one chain of length 1 per
// lemma, emitting the whole lemma as a single label.
func buildWord(cfg Config, lex *lexicon.Lexicon) (*Tree, error) {
	b := newBuilder()

	for _, id := range sortedLemmaIDs(lex) {
		if skipLemma(cfg, lex, id) {
			continue
		}
		lemma := lex.Lemmas[id]

		label, ok := cfg.TokenLabel(lemma.Name)
		if !ok {
			switch cfg.UnknownPolicy {
			case UnknownMapToUnk:
				label = cfg.UnknownLabel
			default:
				continue
			}
		}

		n := b.addNode(label, ClassDefault)
		b.addSuccessor(Root, n)
		b.addExit(n, Exit{
			Pronunciation: lexicon.InvalidPronunciation,
			Lemma:         id,
			TransitRoot:   Root,
		})
	}

	t := b.finish(TopologyWord, lex.SilenceLemma, Root, lex.HasSilence)
	return t, nil
}
