// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lm

import "github.com/gaissmai/lvcsr/scorer"

// NGramBuilder incrementally constructs an NGram finite-state model
// from explicit n-gram entries, mirroring fslm's Builder (simplified:
// no ARPA parsing, callers add entries directly).
type NGramBuilder struct {
	vocab  map[Token]int32
	words  []Token
	states []map[int32]transition
	backoff []transition
	bos, eos Token
}

// NewNGramBuilder starts a builder whose empty context is state 0.
func NewNGramBuilder(bos, eos Token) *NGramBuilder {
	b := &NGramBuilder{
		vocab:   make(map[Token]int32),
		states:  []map[int32]transition{{}},
		backoff: []transition{{state: emptyState, weight: 0}},
		bos:     bos,
		eos:     eos,
	}
	b.intern(bos)
	b.intern(eos)
	return b
}

func (b *NGramBuilder) intern(tok Token) int32 {
	if id, ok := b.vocab[tok]; ok {
		return id
	}
	id := int32(len(b.words))
	b.vocab[tok] = id
	b.words = append(b.words, tok)
	return id
}

func (b *NGramBuilder) newState() stateID {
	b.states = append(b.states, map[int32]transition{})
	b.backoff = append(b.backoff, transition{state: emptyState, weight: 0})
	return stateID(len(b.states) - 1)
}

// AddTransition records that consuming word from state src leads to
// dst with the given weight (a cost, as every scorer.Score). dst is
// used as given; AddTransition does not allocate it.
func (b *NGramBuilder) AddTransition(src stateID, word Token, weight scorer.Score, dst stateID) {
	b.states[src][b.intern(word)] = transition{state: dst, weight: weight}
}

// NewState allocates and returns a fresh state id.
func (b *NGramBuilder) NewState() stateID { return b.newState() }

// SetBackoff sets the back-off transition of state s.
func (b *NGramBuilder) SetBackoff(s stateID, dst stateID, weight scorer.Score) {
	b.backoff[s] = transition{state: dst, weight: weight}
}

// AddNGram is a convenience helper: it walks/creates the state chain
// for the context history (all but the last token) and installs a
// transition on the last token with weight, optionally chaining a
// back-off of backoffWeight to the context with one fewer token.
func (b *NGramBuilder) AddNGram(context []Token, word Token, weight, backoffWeight scorer.Score) {
	state := emptyState
	for _, tok := range context {
		state = b.stateFor(state, tok)
	}
	wid := b.intern(word)
	dst := b.stateFor(state, word)
	b.states[state][wid] = transition{state: dst, weight: weight}

	if len(context) > 0 {
		parent := emptyState
		for _, tok := range context[1:] {
			parent = b.stateFor(parent, tok)
		}
		b.backoff[dst] = transition{state: parent, weight: backoffWeight}
	} else {
		b.backoff[dst] = transition{state: emptyState, weight: backoffWeight}
	}
}

// stateFor returns the state reached from `from` by consuming tok,
// creating both the transition and the destination state on first use.
func (b *NGramBuilder) stateFor(from stateID, tok Token) stateID {
	wid := b.intern(tok)
	if tr, ok := b.states[from][wid]; ok {
		return tr.state
	}
	dst := b.newState()
	b.states[from][wid] = transition{state: dst, weight: 0}
	return dst
}

// Build finalizes the model.
func (b *NGramBuilder) Build() *NGram {
	return &NGram{
		vocab:   b.vocab,
		words:   b.words,
		states:  b.states,
		backoff: b.backoff,
		bosID:   b.vocab[b.bos],
		eosID:   b.vocab[b.eos],
	}
}
