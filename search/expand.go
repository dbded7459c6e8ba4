// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"fmt"

	"github.com/gaissmai/lvcsr/internal/beam"
	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/internal/trace"
	"github.com/gaissmai/lvcsr/scorer"
)

// Error is a sentinel search error, checked with errors.Is against one
// of the Err* constants below.
type Error string

func (e Error) Error() string { return string(e) }

// ErrScorerContractViolation marks a fatal scorer-contract breach
// (score-vector length mismatch, invalid label index): the search
// aborts rather than substituting a degraded score, since continuing
// would silently fabricate acoustic evidence.
const ErrScorerContractViolation = Error("search: scorer contract violation")

// startNewTrees is driver step 1: every word-end that survived
// recombination last step activates or re-enters a tree instance
// keyed by its recombination history, enqueuing its entry trace.
func (s *SearchSpace) startNewTrees() {
	for _, wh := range s.pendingWordEnds {
		key := instanceKey(s.lmModel, wh.RecombinationHistory, s.cfg.Recombination.WordEndRecombinationLimit)
		ti := s.registry.Activate(key, func() *beam.Instance {
			return beam.NewInstance(key, wh.LabelHandle, wh.LookaheadHistory)
		})
		transitRoot := s.tree.Exit(wh.Exit).TransitRoot
		ti.AddEntry(wh.TraceRef, transitRoot, wh.LabelHandle)
	}
	s.pendingWordEnds = nil
}

// localScores fetches the label scorer's per-class score vector for
// handle, using the dedicated loop pass when isLoop is set. A GetScores
// error is a fatal scorer contract violation (§7): the caller must
// abort the step rather than substitute a placeholder vector.
func (s *SearchSpace) localScores(handle scorer.History, isLoop bool) ([]scorer.Score, error) {
	scores, err := s.sc.GetScores(handle, isLoop)
	if err != nil {
		return nil, fmt.Errorf("%w: GetScores: %v", ErrScorerContractViolation, err)
	}
	return scores, nil
}

// expandLabels is driver step 2: for every instance, for each live
// label hypothesis and each pending entry, emit one child per LPT
// successor, plus an optional blank child staying on the same node.
// Returns a fatal error immediately on a scorer contract violation,
// without finishing the remaining instances.
func (s *SearchSpace) expandLabels() error {
	for _, ti := range s.registry.All() {
		var children []beam.LabelHypothesis

		for _, lh := range s.step.Labels(ti.Labels) {
			next, err := s.expandNode(lh.Node, lh.Score, lh.History, lh.TraceRef, lh.NLabels, lh.NWords, lh.Position, lh.IsBlank)
			if err != nil {
				return err
			}
			children = append(children, next...)
		}
		for i, entryNode := range ti.EntryNodes {
			next, err := s.expandNode(entryNode, 0, ti.EntryHandles[i], ti.Entries[i], 0, 0, -1, false)
			if err != nil {
				return err
			}
			children = append(children, next...)
		}
		ti.ClearEntries()

		ti.Labels = s.step.AppendLabels(children...)
	}
	return nil
}

// expandCandidate is an intermediate successor before local pruning.
type expandCandidate struct {
	succ   lpt.NodeID
	local  scorer.Score
	isLoop bool
}

// expandNode produces the successor children of one (node, handle,
// score) triple: one per LPT successor (loop successor included when
// the topology allows it), plus a blank child when enabled.
func (s *SearchSpace) expandNode(node lpt.NodeID, score scorer.Score, handle scorer.History, traceRef trace.ID, nLabels, nWords, position int, parentIsBlank bool) ([]beam.LabelHypothesis, error) {
	succs := s.tree.Successors(node, nil)
	if len(succs) == 0 {
		return nil, nil
	}

	forward, err := s.localScores(handle, false)
	if err != nil {
		return nil, err
	}
	var loopScores []scorer.Score

	cands := make([]expandCandidate, 0, len(succs))
	best := scorer.LogZero
	for _, succ := range succs {
		isLoop := succ == node
		if isLoop && (!s.cfg.Topology.AllowLabelLoop || parentIsBlank) {
			continue
		}
		label := s.tree.LabelOf(succ)
		if label == lpt.InvalidLabel {
			continue
		}

		var local scorer.Score
		if isLoop {
			if loopScores == nil {
				loopScores, err = s.localScores(handle, true)
				if err != nil {
					return nil, err
				}
			}
			local, err = scoreAt(loopScores, label)
		} else {
			local, err = scoreAt(forward, label)
		}
		if err != nil {
			return nil, err
		}
		if local < best {
			best = local
		}
		cands = append(cands, expandCandidate{succ: succ, local: local, isLoop: isLoop})
	}

	out := make([]beam.LabelHypothesis, 0, len(cands)+1)
	for _, c := range cands {
		if s.cfg.Pruning.LocalLabelPruning != scorer.LogZero && c.local-best > s.cfg.Pruning.LocalLabelPruning {
			continue
		}

		newScore := score + c.local
		if penalty := s.tree.TransitionPenalty(node, c.succ); penalty != 0 {
			newScore += penalty
		}
		newHandle := s.sc.ExtendHistory(handle, s.tree.LabelOf(c.succ), position, c.isLoop)

		loopCount := 0
		if c.isLoop {
			loopCount = 1
		}

		out = append(out, beam.LabelHypothesis{
			Node:         c.succ,
			Score:        newScore,
			Prospect:     newScore,
			TraceRef:     traceRef,
			History:      newHandle,
			NLabels:      nLabels + 1,
			NWords:       nWords,
			Position:     s.nextPosition(position, c.isLoop),
			IsBlank:      false,
			CameFromLoop: c.isLoop,
			LoopCount:    loopCount,
		})
	}

	if s.cfg.Topology.AllowBlankLabel && s.caps.BlankLabelIndex >= 0 && !parentIsBlank {
		blankLocal, err := scoreAt(forward, s.caps.BlankLabelIndex)
		if err != nil {
			return nil, err
		}
		blankScore := score + blankLocal + s.cfg.Topology.BlankLabelPenalty
		blankHandle := handle
		if s.caps.BlankUpdatesHistory {
			blankHandle = s.sc.ExtendHistory(handle, s.caps.BlankLabelIndex, position, false)
		}
		out = append(out, beam.LabelHypothesis{
			Node:     node,
			Score:    blankScore,
			Prospect: blankScore,
			TraceRef: traceRef,
			History:  blankHandle,
			NLabels:  nLabels,
			NWords:   nWords,
			Position: s.nextPosition(position, false),
			IsBlank:  true,
		})
	}

	return out, nil
}

// scoreAt safely indexes a class-score vector, returning a fatal
// ErrScorerContractViolation for an out-of-range class rather than a
// substitute value — the scorer declared its own class count via
// Capabilities, so an index outside the returned vector is a contract
// breach, not a plausible acoustic outcome.
func scoreAt(scores []scorer.Score, class int32) (scorer.Score, error) {
	if class < 0 || int(class) >= len(scores) {
		return 0, fmt.Errorf("%w: class index %d out of range [0,%d)", ErrScorerContractViolation, class, len(scores))
	}
	return scores[class], nil
}

// nextPosition advances the relative position counter used by
// blank-based transducer topologies; loops and non-position-dependent
// topologies leave it at -1 (unused).
func (s *SearchSpace) nextPosition(position int, isLoop bool) int {
	if isLoop {
		return position
	}
	if !s.caps.IsPositionDependent {
		return -1
	}
	if position < 0 {
		return 0
	}
	return position + 1
}
