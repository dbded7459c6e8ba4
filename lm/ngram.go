// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lm

import "github.com/gaissmai/lvcsr/scorer"

// stateID indexes into NGram.transitions. emptyState is the context-free
// state all histories eventually back off to.
type stateID int32

const emptyState stateID = 0

type transition struct {
	state  stateID
	weight scorer.Score
}

// NGram is a finite-state back-off n-gram language model: a direct,
// renamed port of kho/fslm's Model.NextI traversal loop (the retrieved
// pack's only finite-state LM implementation), adapted from a
// mmap'd, gob-serialized table to a map-based in-memory model built
// incrementally via NGramBuilder.
type NGram struct {
	vocab  map[Token]int32
	words  []Token
	states []map[int32]transition // states[s][wordID] = (next state, weight)
	backoff []transition          // backoff[s] = state to fall back to from s

	bosID, eosID int32
}

const wordNil int32 = -1

// StartHistory returns the state for the empty context.
func (m *NGram) StartHistory() History { return History(emptyState) }

func (m *NGram) wordID(tok Token) int32 {
	id, ok := m.vocab[tok]
	if !ok {
		return wordNil
	}
	return id
}

// next resolves the (state, weight) reached by consuming word w from
// state p, backing off through empty contexts exactly as
// fslm.Model.NextI does.
func (m *NGram) next(p stateID, w int32) (stateID, scorer.Score) {
	var acc scorer.Score
	for {
		if tr, ok := m.states[p][w]; ok {
			return tr.state, acc + tr.weight
		}
		if p == emptyState {
			return emptyState, scorer.LogZero
		}
		bo := m.backoff[p]
		acc += bo.weight
		p = bo.state
	}
}

// ExtendedHistory advances h by consuming token.
func (m *NGram) ExtendedHistory(h History, token Token) History {
	next, _ := m.next(stateID(h), m.wordID(token))
	return History(next)
}

// ReducedHistory shortens h by walking the back-off chain order times,
// stopping early at the empty context; order==0 returns h unchanged.
func (m *NGram) ReducedHistory(h History, order int) History {
	p := stateID(h)
	for i := 0; i < order && p != emptyState; i++ {
		p = m.backoff[p].state
	}
	return History(p)
}

// SentenceEndScore scores the end-of-sentence token from h.
func (m *NGram) SentenceEndScore(h History) scorer.Score {
	_, w := m.next(stateID(h), m.eosID)
	return w
}

// GetBatch scores each requested token sequence independently from
// history, accumulating transitions across the sequence.
func (m *NGram) GetBatch(history History, req BatchRequest, out []scorer.Score) error {
	for i, seq := range req.Sequences {
		p := stateID(history)
		var total scorer.Score
		for _, tok := range seq {
			var w scorer.Score
			p, w = m.next(p, m.wordID(tok))
			total += w
			if p == emptyState && w == scorer.LogZero {
				break
			}
		}
		out[i] = total
	}
	return nil
}
