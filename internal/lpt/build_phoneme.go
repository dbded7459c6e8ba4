// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpt

import "github.com/gaissmai/lvcsr/lexicon"

// buildPhoneme implements the Phoneme topology: one entry per
// pronunciation, identical prefixes shared by hash-consing each
// (parent, label) pair.
func buildPhoneme(cfg Config, lex *lexicon.Lexicon) (*Tree, error) {
	b := newBuilder()

	for _, id := range sortedLemmaIDs(lex) {
		if skipLemma(cfg, lex, id) {
			continue
		}

		for _, pron := range lex.LemmaPronunciations(id) {
			parent := Root
			ok := true
			for _, ph := range pron.Phonemes {
				label, found := cfg.PhonemeLabel(ph)
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
				Pronunciation: pron.ID,
				Lemma:         id,
				TransitRoot:   Root,
			})
		}
	}

	return b.finish(TopologyPhoneme, lex.SilenceLemma, Root, lex.HasSilence), nil
}
