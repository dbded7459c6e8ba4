// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"github.com/gaissmai/lvcsr/internal/beam"
	"github.com/gaissmai/lvcsr/internal/trace"
	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/lm"
	"github.com/gaissmai/lvcsr/scorer"
)

// lmWordScore scores a lemma's syntactic token sequence under history
// via a one-entry GetBatch call, the same vectorised path LMLA
// populate uses — there is no scalar "score one sequence" method on
// lm.LanguageModel.
func (s *SearchSpace) lmWordScore(history lm.History, lemma lexicon.LemmaID) scorer.Score {
	l, ok := s.lex.Lemmas[lemma]
	if !ok {
		return 0
	}
	out := make([]scorer.Score, 1)
	req := lm.BatchRequest{Sequences: [][]lm.Token{l.SyntacticTokens}}
	if err := s.lmModel.GetBatch(history, req, out); err != nil {
		s.logger.Printf("search: GetBatch: %v", err)
		return scorer.LogZero
	}
	return out[0]
}

// extendLMHistory consumes lemma's syntactic tokens one at a time,
// the scalar counterpart of the batched lookahead population.
func (s *SearchSpace) extendLMHistory(h lm.History, lemma lexicon.LemmaID) lm.History {
	l, ok := s.lex.Lemmas[lemma]
	if !ok {
		return h
	}
	for _, tok := range l.SyntacticTokens {
		h = s.lmModel.ExtendedHistory(h, tok)
	}
	return h
}

// findWordEnds is driver step 7: every live, non-blank hypothesis
// whose node carries an exit, that satisfies min_loop_occurrence, and
// is not blank, contributes one early word-end per exit. Histories
// are not yet extended — that is step 9's job for survivors only.
func (s *SearchSpace) findWordEnds() []beam.WordEndHypothesis {
	var out []beam.WordEndHypothesis

	for _, ti := range s.registry.All() {
		for _, lh := range s.step.Labels(ti.Labels) {
			if lh.IsBlank {
				continue
			}
			if lh.CameFromLoop && lh.LoopCount < s.cfg.Topology.MinLoopOccurrence {
				continue
			}
			if !s.tree.HasExit(lh.Node) {
				continue
			}

			for _, exitID := range s.tree.Exits(lh.Node) {
				exit := s.tree.Exit(exitID)
				lmScore := ti.LMScore(exit.Lemma, func() scorer.Score {
					return s.lmWordScore(ti.LookaheadHistory, exit.Lemma)
				})
				score := lh.Score + lmScore + s.tree.ExitPenalty(lh.Node)

				out = append(out, beam.WordEndHypothesis{
					Exit:                  exitID,
					Score:                 score,
					Prospect:              score,
					TraceRef:              lh.TraceRef,
					LabelHandle:           lh.History,
					LMHistory:             ti.LookaheadHistory,
					RecombinationHistory:  ti.LookaheadHistory,
					LookaheadHistory:      ti.LookaheadHistory,
					NLabels:               lh.NLabels,
					NWords:                lh.NWords + 1,
					Position:              lh.Position,
					HistoriesExtended:     false,
				})
			}
		}
	}

	return out
}

// extendHistoriesOnSurvivors is driver step 9: every word-end that
// survived global pruning gets its LM history extended across its
// lemma's syntactic tokens, and a new trace allocated linking to its
// entry trace.
func (s *SearchSpace) extendHistoriesOnSurvivors(survivors []beam.WordEndHypothesis) []beam.WordEndHypothesis {
	out := make([]beam.WordEndHypothesis, len(survivors))

	for i, wh := range survivors {
		exit := s.tree.Exit(wh.Exit)
		extended := s.extendLMHistory(wh.LMHistory, exit.Lemma)

		hasPred := wh.TraceRef != trace.None
		tr := s.arena.New(wh.TraceRef, hasPred, exit.Pronunciation, exit.Lemma, s.position,
			trace.Scores{Acoustic: wh.Score, LM: 0, Prospect: wh.Prospect},
			wh.NLabels, wh.NWords, wh.Position)

		out[i] = beam.WordEndHypothesis{
			Exit:                 wh.Exit,
			Score:                wh.Score,
			Prospect:             wh.Prospect,
			TraceRef:             tr,
			LabelHandle:          wh.LabelHandle,
			LMHistory:            extended,
			RecombinationHistory: extended,
			LookaheadHistory:     extended,
			NLabels:              wh.NLabels,
			NWords:               wh.NWords,
			Position:             wh.Position,
			HistoriesExtended:    true,
		}
	}

	return out
}
