// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package scorer defines the LabelScorer contract consumed by the
// search. The neural label scorer itself — the acoustic
// front-end and the network that turns a history handle and a frame
// into per-class scores — is an external collaborator; this package
// only fixes the interface and capability-flag shape the decoder was
// written against.
//
// The capability-flag struct is grounded on the boolean feature-toggle
// blocks sitting next to the scoring entrypoint in
// fatihusta/spago's sequence labeler model.
package scorer

import "math"

// Score is a cost (a negated log-probability); lower is better. LogZero
// represents an infeasible path and is a normal, expected value.
type Score = float64

// LogZero is the canonical "infeasible" score.
var LogZero Score = math.Inf(1)

// History is an opaque handle into the label scorer's internal state
// (e.g. an RNN hidden state index, a context window). The search never
// inspects it, only threads it through ExtendHistory.
type History uint64

// NoHistory is the handle returned for scorers that are not history
// dependent.
const NoHistory History = 0

// Capabilities declares which optional behaviours a LabelScorer
// implements, used by the search driver to select code paths.
type Capabilities struct {
	IsHistoryDependent  bool
	IsPositionDependent bool
	UseRelativePosition bool
	UseVerticalTransition bool
	NeedEndProcess      bool
	BlankUpdatesHistory bool
	LoopUpdatesHistory  bool

	BlankLabelIndex   int32 // -1 if AllowBlankLabel is false
	EndLabelIndex     int32 // -1 if topology has no end label
	UnknownLabelIndex int32 // -1 if the scorer has no <unk>
	StartLabelIndex   int32 // -1 if topology has no explicit start label

	NumClasses int
}

// SegmentScore is one (length, score) pair of a segmental scorer's
// duration distribution.
type SegmentScore struct {
	Length int
	Score  Score
}

// LabelScorer is the per-label acoustic scoring contract the search
// drives every step.
type LabelScorer interface {
	Capabilities() Capabilities

	// StartHistory returns the handle a hypothesis starts with before
	// consuming any label.
	StartHistory() History

	// ExtendHistory advances handle by consuming label at position,
	// returning the successor handle. Blank and loop extensions may be
	// no-ops depending on Capabilities.BlankUpdatesHistory /
	// LoopUpdatesHistory.
	ExtendHistory(handle History, label int32, position int, isLoop bool) History

	// ReducedHash reduces handle to an equivalence class of order k,
	// for within-tree recombination.
	ReducedHash(handle History, k int) uint64

	// GetScores returns one score per class (plus a dedicated loop
	// score appended when the scorer exposes one), for the given
	// history and loop flag.
	GetScores(handle History, isLoop bool) ([]Score, error)

	// GetSegmentScores returns the duration distribution for a
	// segmental topology's class starting at startPosition.
	GetSegmentScores(handle History, class int32, startPosition int) ([]SegmentScore, error)

	// Buffer lifecycle, driven once per step by the search.
	BufferFilled() bool
	ReachEnd() bool
	IncreaseDecodeStep()
	CleanUpBeforeExtension(minPosition int)
}
