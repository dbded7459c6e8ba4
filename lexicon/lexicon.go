// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package lexicon defines the opaque identifiers the decoder consumes
// from the lexicon, phoneme inventory and lemma/pronunciation objects.
// Building and populating a Lexicon is explicitly out of scope; this package only fixes the shapes the rest of the module
// needs to talk about lemmas, pronunciations and phonemes.
package lexicon

// PhonemeID indexes into an externally supplied phoneme inventory.
type PhonemeID int32

// LemmaID identifies a lemma (word, subword token, or HMM output
// class, depending on topology).
type LemmaID int32

// PronunciationID identifies one pronunciation variant of a lemma.
type PronunciationID int32

// InvalidLemma, InvalidPronunciation and InvalidPhoneme mark the
// absence of an otherwise-mandatory identifier, e.g. a subword/word
// exit carries no PronunciationID.
const (
	InvalidLemma         LemmaID         = -1
	InvalidPronunciation PronunciationID = -1
	InvalidPhoneme       PhonemeID       = -1
)

// Pronunciation is a phoneme sequence realizing one variant of a lemma.
type Pronunciation struct {
	ID       PronunciationID
	Lemma    LemmaID
	Phonemes []PhonemeID
}

// Lemma is a lexicon entry: a surface form together with the syntactic
// token sequence the language model scores it under and the set of
// pronunciations that realize it.
type Lemma struct {
	ID              LemmaID
	Name            string
	SyntacticTokens []string
	Pronunciations  []PronunciationID
}

// HasEmptySyntacticTokenSequence reports whether l contributes nothing
// to LM scoring. Word-ends for such lemmas are candidates for sibling
// pruning when building a lattice.
func (l Lemma) HasEmptySyntacticTokenSequence() bool {
	return len(l.SyntacticTokens) == 0
}

// Lexicon is a minimal, read-only view over lemmas, pronunciations and
// the silence lemma, sufficient for LPT construction.
type Lexicon struct {
	Lemmas         map[LemmaID]Lemma
	Pronunciations map[PronunciationID]Pronunciation
	SilenceLemma   LemmaID
	HasSilence     bool
}

// New creates an empty, ready-to-populate Lexicon.
func New() *Lexicon {
	return &Lexicon{
		Lemmas:         make(map[LemmaID]Lemma),
		Pronunciations: make(map[PronunciationID]Pronunciation),
		SilenceLemma:   InvalidLemma,
	}
}

// AddLemma registers a lemma, along with its pronunciations.
func (lx *Lexicon) AddLemma(l Lemma, prons ...Pronunciation) {
	lx.Lemmas[l.ID] = l
	for _, p := range prons {
		lx.Pronunciations[p.ID] = p
	}
}

// SetSilence marks id as the silence lemma, consulted by phoneme/HMM
// topology builders that may skip silence.
func (lx *Lexicon) SetSilence(id LemmaID) {
	lx.SilenceLemma = id
	lx.HasSilence = true
}

// LemmaPronunciations resolves the pronunciation objects of a lemma.
func (lx *Lexicon) LemmaPronunciations(id LemmaID) []Pronunciation {
	lemma, ok := lx.Lemmas[id]
	if !ok {
		return nil
	}
	prons := make([]Pronunciation, 0, len(lemma.Pronunciations))
	for _, pid := range lemma.Pronunciations {
		if p, ok := lx.Pronunciations[pid]; ok {
			prons = append(prons, p)
		}
	}
	return prons
}
