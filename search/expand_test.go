// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"errors"
	"testing"

	"github.com/gaissmai/lvcsr/scorer"
)

// erroringScorer is a LabelScorer stub whose GetScores always fails,
// simulating a scorer contract violation.
type erroringScorer struct{ scorer.LabelScorer }

func (erroringScorer) Capabilities() scorer.Capabilities { return scorer.Capabilities{NumClasses: 5} }
func (erroringScorer) StartHistory() scorer.History      { return scorer.NoHistory }
func (erroringScorer) GetScores(scorer.History, bool) ([]scorer.Score, error) {
	return nil, errors.New("rpc: connection reset")
}

func TestExpandLabelsAbortsOnScorerContractViolation(t *testing.T) {
	tree, lex := buildCatCarTree(t)
	s := newTestSpace(t, tree, lex)
	s.sc = erroringScorer{}
	s.caps = s.sc.Capabilities()
	s.Start()

	s.step.Begin()
	s.startNewTrees()

	if err := s.expandLabels(); !errors.Is(err, ErrScorerContractViolation) {
		t.Fatalf("expandLabels error = %v, want wrapped ErrScorerContractViolation", err)
	}
}

func TestScoreAtOutOfRangeClassIsFatal(t *testing.T) {
	_, err := scoreAt([]scorer.Score{1, 2, 3}, 5)
	if !errors.Is(err, ErrScorerContractViolation) {
		t.Fatalf("scoreAt error = %v, want wrapped ErrScorerContractViolation", err)
	}
}

func TestScoreAtInRangeClassSucceeds(t *testing.T) {
	got, err := scoreAt([]scorer.Score{1, 2, 3}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2 {
		t.Fatalf("scoreAt = %v, want 2", got)
	}
}
