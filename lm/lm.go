// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package lm defines the LanguageModel contract consumed by the search
// and by the LM look-ahead builder. The language-model
// family itself is an external collaborator; only the
// history/score/reduction interface is consumed.
package lm

import "github.com/gaissmai/lvcsr/scorer"

// History is an opaque LM state handle, analogous to scorer.History
// but kept as a distinct type since LM history and label-scorer
// history evolve independently.
type History uint64

// Token is a syntactic token consumed by the LM, as carried by
// lexicon.Lemma.SyntacticTokens.
type Token = string

// BatchRequest lists the token sequences LMLookahead wants scored in
// one vectorised call.
type BatchRequest struct {
	// Sequences[i] are the syntactic tokens of the i-th requested exit;
	// GetBatch writes its score to out[i].
	Sequences [][]Token
}

// LanguageModel is the history/score/reduction contract the search and
// the look-ahead builder drive.
type LanguageModel interface {
	StartHistory() History
	ExtendedHistory(h History, token Token) History
	ReducedHistory(h History, order int) History
	SentenceEndScore(h History) scorer.Score

	// GetBatch scores every sequence in req under history, writing
	// results into out (len(out) == len(req.Sequences)). LM look-ahead
	// uses this for a single vectorised population pass per history.
	GetBatch(history History, req BatchRequest, out []scorer.Score) error
}
