// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package search implements the SearchSpace beam-search driver: the
// per-step expand / look-ahead / prune / recombine / word-end /
// end-trace loop that drives a lexical prefix tree under a label
// scorer and a language model, plus best-path and lattice extraction.
package search

import (
	"context"
	"log"
	"time"

	"github.com/gaissmai/lvcsr/config"
	"github.com/gaissmai/lvcsr/internal/beam"
	"github.com/gaissmai/lvcsr/internal/lmla"
	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/internal/trace"
	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/lm"
	"github.com/gaissmai/lvcsr/scorer"
)

// EndTrace is a trace that has ended (§4.4): the configured end-label
// was emitted, a blank root was reached at input-length, or a
// segmental hypothesis's start position equals input-length.
type EndTrace struct {
	TraceRef trace.ID
	Prospect scorer.Score
	Step     int
}

// fallbackCandidate tracks the best in-beam hypothesis seen so far, so
// a segment that ends without a properly ended trace can still
// promote something (§4.4 Fallback).
type fallbackCandidate struct {
	valid     bool
	traceRef  trace.ID
	prospect  scorer.Score
	lmHistory lm.History
	nLabels   int
	nWords    int
}

// RTFBudget is a soft real-time-factor cap (§5 Cancellation &
// timeouts): once exceeded, the driver skips LMLA full-order
// computation for newly dominant instances for the remainder of the
// run rather than aborting it.
type RTFBudget struct {
	MaxRTF float64

	start        time.Time
	audioElapsed time.Duration
	tripped      bool
}

// NewRTFBudget creates a budget that trips once wall-clock time spent
// exceeds maxRTF times the audio duration processed so far. maxRTF <=
// 0 disables the cap.
func NewRTFBudget(maxRTF float64) *RTFBudget {
	return &RTFBudget{MaxRTF: maxRTF}
}

// Begin marks the start of the run.
func (b *RTFBudget) Begin() {
	if b == nil {
		return
	}
	b.start = time.Now()
}

// Advance records that one more frame of duration frameDur has been
// consumed, and reports whether the budget is (now) tripped.
func (b *RTFBudget) Advance(frameDur time.Duration) bool {
	if b == nil || b.MaxRTF <= 0 {
		return false
	}
	b.audioElapsed += frameDur
	if !b.tripped && time.Since(b.start) > time.Duration(float64(b.audioElapsed)*b.MaxRTF) {
		b.tripped = true
	}
	return b.tripped
}

// Tripped reports whether the budget has tripped.
func (b *RTFBudget) Tripped() bool { return b != nil && b.tripped }

// SearchSpace is the beam-search engine driving a lexical prefix tree
// under one label scorer and one language model. It is single-use:
// create one per decoding run via New.
type SearchSpace struct {
	cfg config.Config

	tree *lpt.Tree
	lex  *lexicon.Lexicon

	sc      scorer.LabelScorer
	lmModel lm.LanguageModel
	lookahead *lmla.Cache

	caps scorer.Capabilities

	arena    *trace.Arena
	registry *beam.Registry
	step     *beam.Step

	pendingWordEnds []beam.WordEndHypothesis

	position          int
	inputLength       int
	globalScoreOffset scorer.Score

	endTraces []EndTrace
	fallback  fallbackCandidate

	stepSumScore, stepEndScore, stepAccuLenScore scorer.Score

	rtf *RTFBudget

	logger *log.Logger
}

// New creates a SearchSpace over tree, scoring with sc and scoring/
// looking ahead with lmModel via lookahead. logger defaults to
// log.Default() when nil, the teacher's convention for an injectable,
// always-present logger.
func New(cfg config.Config, tree *lpt.Tree, lex *lexicon.Lexicon, sc scorer.LabelScorer, lmModel lm.LanguageModel, lookahead *lmla.Cache, logger *log.Logger) *SearchSpace {
	if logger == nil {
		logger = log.Default()
	}
	caps := sc.Capabilities()
	return &SearchSpace{
		cfg:       cfg,
		tree:      tree,
		lex:       lex,
		sc:        sc,
		lmModel:   lmModel,
		lookahead: lookahead,
		caps:      caps,
		arena:     trace.NewArena(),
		registry:  beam.NewRegistry(cfg.InstanceLifecycle.InstanceDeletionTolerance),
		step:      beam.NewStep(cfg.Pruning.LabelPruningLimit, cfg.Pruning.WordEndPruningLimit),
		logger:    logger,
	}
}

// Start seeds the initial tree instance at the root, with one entry
// trace of trace.None (no predecessor), ready for the first Step.
func (s *SearchSpace) Start() {
	scHandle := s.sc.StartHistory()
	lmHandle := s.lmModel.StartHistory()
	key := scorer.History(lmHandle)

	ti := s.registry.Activate(key, func() *beam.Instance {
		return beam.NewInstance(key, scHandle, lmHandle)
	})
	ti.AddEntry(trace.None, lpt.Root, scHandle)
}

// Position reports the current step/frame index.
func (s *SearchSpace) Position() int { return s.position }

// GlobalScoreOffset reports the accumulated rescale offset (§4.3 step
// 12, §8 invariant 7).
func (s *SearchSpace) GlobalScoreOffset() scorer.Score { return s.globalScoreOffset }

// Arena exposes the trace arena backing every hypothesis in this run,
// needed by callers that walk traces after Decode returns.
func (s *SearchSpace) Arena() *trace.Arena { return s.arena }

// SetRTFBudget installs a soft real-time cap for subsequent steps.
func (s *SearchSpace) SetRTFBudget(b *RTFBudget) { s.rtf = b }

// SetInputLength records the number of frames the current segment
// carries, needed by end-trace detection to recognise a blank root
// reached at input-length or a segmental hypothesis whose start
// position has caught up with the input.
func (s *SearchSpace) SetInputLength(n int) { s.inputLength = n }

// Step runs one full iteration of the 12-step driver loop (§4.3) over
// the frame at the current position, then advances the position.
func (s *SearchSpace) Step(ctx context.Context) error {
	s.step.Begin()
	s.stepSumScore, s.stepEndScore = scorer.LogZero, scorer.LogZero

	s.startNewTrees()
	if err := s.expandLabels(); err != nil {
		return err
	}
	s.applyLookahead()
	s.pruneLabels()
	s.recombineWithinTree()
	s.extendHistory()

	earlyEnds := s.findWordEnds()
	survivors := s.globalPrune(earlyEnds)
	created := s.extendHistoriesOnSurvivors(survivors)
	s.pendingWordEnds = s.recombineWordEnds(created)

	s.endProcessing()
	s.cleanupAndRescale()

	s.sc.IncreaseDecodeStep()
	s.position++
	if s.rtf != nil {
		s.rtf.Advance(20 * time.Millisecond)
	}
	return ctx.Err()
}

// instanceKey derives the registry key for a reduced LM history: the
// reduced history's value converted to scorer.History, since
// beam.Registry is indexed by a generic scorer.History-shaped handle rather than by the raw LM
// history type (a tree instance's identity is the equivalence class a
// history reduces to, not the history value itself).
func instanceKey(lmModel lm.LanguageModel, h lm.History, order int) scorer.History {
	reduced := lmModel.ReducedHistory(h, order)
	return scorer.History(reduced)
}
