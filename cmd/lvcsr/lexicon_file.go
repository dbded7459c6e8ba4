// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/gaissmai/lvcsr/lexicon"
)

// lexiconFile is the on-disk JSON shape build-lpt and decode read a
// lexicon from. Populating a real lexicon from a dictionary/G2P
// pipeline is an external collaborator's job; this format exists only
// to drive the CLI end to end against a small, hand-written lexicon.
type lexiconFile struct {
	Silence string          `json:"silence,omitempty"`
	Lemmas  []lexiconEntry  `json:"lemmas"`
}

type lexiconEntry struct {
	Name            string     `json:"name"`
	SyntacticTokens []string   `json:"syntactic_tokens,omitempty"`
	Pronunciations  [][]string `json:"pronunciations,omitempty"` // each inner list is a phoneme-symbol sequence
}

// loadLexiconFile parses path into a lexicon.Lexicon, interning phoneme
// symbols in first-seen order so PhonemeID assignment is deterministic.
func loadLexiconFile(path string) (*lexicon.Lexicon, map[string]lexicon.PhonemeID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("lexicon: read %s: %w", path, err)
	}
	var lf lexiconFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, nil, fmt.Errorf("lexicon: parse %s: %w", path, err)
	}

	phonemes := make(map[string]lexicon.PhonemeID)
	internPhoneme := func(sym string) lexicon.PhonemeID {
		if id, ok := phonemes[sym]; ok {
			return id
		}
		id := lexicon.PhonemeID(len(phonemes))
		phonemes[sym] = id
		return id
	}

	lex := lexicon.New()
	pronID := lexicon.PronunciationID(0)
	for i, entry := range lf.Lemmas {
		lemmaID := lexicon.LemmaID(i)
		var pronIDs []lexicon.PronunciationID
		var prons []lexicon.Pronunciation
		for _, symbols := range entry.Pronunciations {
			phonemeIDs := make([]lexicon.PhonemeID, len(symbols))
			for j, sym := range symbols {
				phonemeIDs[j] = internPhoneme(sym)
			}
			p := lexicon.Pronunciation{ID: pronID, Lemma: lemmaID, Phonemes: phonemeIDs}
			prons = append(prons, p)
			pronIDs = append(pronIDs, pronID)
			pronID++
		}
		lex.AddLemma(lexicon.Lemma{
			ID:              lemmaID,
			Name:            entry.Name,
			SyntacticTokens: entry.SyntacticTokens,
			Pronunciations:  pronIDs,
		}, prons...)
		if lf.Silence != "" && entry.Name == lf.Silence {
			lex.SetSilence(lemmaID)
		}
	}
	return lex, phonemes, nil
}

// internTokenLabels assigns a deterministic int32 label to every
// distinct lemma name and syntactic token in lex, in sorted-lemma-id
// order, standing in for the scorer's own vocabulary lookup.
func internTokenLabels(lex *lexicon.Lexicon) map[string]int32 {
	ids := make([]lexicon.LemmaID, 0, len(lex.Lemmas))
	for id := range lex.Lemmas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	labels := make(map[string]int32)
	intern := func(s string) {
		if _, ok := labels[s]; !ok {
			labels[s] = int32(len(labels))
		}
	}
	for _, id := range ids {
		lemma := lex.Lemmas[id]
		intern(lemma.Name)
		for _, tok := range lemma.SyntacticTokens {
			intern(tok)
		}
	}
	return labels
}
