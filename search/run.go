// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gaissmai/lvcsr/internal/trace"
	"github.com/gaissmai/lvcsr/scorer"
)

// Result is the outcome of a completed decoding run.
type Result struct {
	TraceRef trace.ID
	Prospect scorer.Score
	Fallback bool // true when no properly ended trace existed and the best in-beam candidate was promoted (§4.4)
}

// Run wraps one SearchSpace execution with a correlatable identity,
// stamped so log lines and lattice output from the same decode can be
// tied together.
type Run struct {
	ID    uuid.UUID
	Space *SearchSpace
}

// NewRun creates a run over space with a fresh RunID.
func NewRun(space *SearchSpace) *Run {
	return &Run{ID: uuid.New(), Space: space}
}

// Decode drives numFrames steps of the run's SearchSpace, then
// resolves the best completed hypothesis via GetSentenceEnd, falling
// back to PromoteFallback if nothing properly ended.
func (r *Run) Decode(ctx context.Context, numFrames int, createLattice bool) (Result, error) {
	s := r.Space
	s.SetInputLength(numFrames)
	s.Start()
	s.rtf.Begin()

	for i := 0; i < numFrames; i++ {
		if err := s.Step(ctx); err != nil {
			return Result{}, fmt.Errorf("search: run %s: step %d: %w", r.ID, i, err)
		}
	}

	traceRef, prospect, ok := s.GetSentenceEnd()
	if !ok {
		traceRef, prospect, ok = s.PromoteFallback()
		if !ok {
			return Result{}, fmt.Errorf("search: run %s: no hypothesis survived %d frames", r.ID, numFrames)
		}
		s.logger.Printf("search: run %s: promoted fallback hypothesis at prospect %.3f", r.ID, prospect)
		return Result{TraceRef: traceRef, Prospect: prospect, Fallback: true}, nil
	}

	if createLattice {
		s.pruneEmptySiblings(traceRef)
	}

	return Result{TraceRef: traceRef, Prospect: prospect}, nil
}
