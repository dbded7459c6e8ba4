// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package lpt implements the Lexical Prefix Tree: a
// compressed, static graph of the pronunciation lexicon parameterised
// by the modeling unit. Once built, a Tree is immutable and safe for
// concurrent readers — the same copy-on-write discipline the routing
// table trie this module descends from uses for its node graph.
package lpt

import (
	"github.com/gaissmai/lvcsr/lexicon"
)

// NodeID is a dense, non-negative node index; 0 is always the root.
type NodeID int32

// Root is the id of the tree's root node.
const Root NodeID = 0

// InvalidLabel marks a node that emits no acoustic label (root and
// transit-roots).
const InvalidLabel int32 = -1

// TransitionClass buckets nodes into the 3-class penalty table.
type TransitionClass uint8

const (
	ClassDefault TransitionClass = iota
	ClassRoot
	ClassSpecial
)

// ExitID indexes into Tree.exits.
type ExitID int32

// Exit records what a word-end emits downstream and which root to
// re-enter on success.
type Exit struct {
	Pronunciation lexicon.PronunciationID // InvalidPronunciation for subword/word topologies
	Lemma         lexicon.LemmaID
	TransitRoot   NodeID
}

// node is the internal, mutable-during-build representation; Tree
// exposes it read-only once built.
type node struct {
	label       int32
	class       TransitionClass
	successors  []NodeID // kept sorted ascending; out-degree is small (branching factor), so a slice beats a bitset here
	exits       []ExitID
	hasSelfLoop bool
}

// Topology selects how build() turns a Lexicon into a Tree.
type Topology uint8

const (
	TopologyHMM Topology = iota
	TopologyPhoneme
	TopologySubword
	TopologyWord
)

// Tree is the compressed, optionally minimized, static lexical prefix
// tree graph.
type Tree struct {
	Topology Topology

	nodes []node
	exits []Exit

	silenceNode   NodeID
	hasSilence    bool
	endLabelNode  NodeID
	hasEndLabel   bool

	penalties PenaltyTable
}

// NumNodes returns the number of nodes in the tree.
func (t *Tree) NumNodes() int { return len(t.nodes) }

// NumExits returns the number of distinct exits.
func (t *Tree) NumExits() int { return len(t.exits) }

// LabelOf returns the acoustic label index carried by node n, or
// InvalidLabel for root/transit-root nodes.
func (t *Tree) LabelOf(n NodeID) int32 { return t.nodes[n].label }

// ClassOf returns n's transition class.
func (t *Tree) ClassOf(n NodeID) TransitionClass { return t.nodes[n].class }

// HasExit reports whether n carries at least one exit.
func (t *Tree) HasExit(n NodeID) bool { return len(t.nodes[n].exits) > 0 }

// Exits returns the exit ids attached to n.
func (t *Tree) Exits(n NodeID) []ExitID { return t.nodes[n].exits }

// Exit resolves an ExitID to its Exit value.
func (t *Tree) Exit(id ExitID) Exit { return t.exits[id] }

// Successors appends n's successor node ids to buf and returns the
// extended slice, in ascending node-id order, copied from the node's
// plain successor slice.
func (t *Tree) Successors(n NodeID, buf []NodeID) []NodeID {
	return append(buf, t.nodes[n].successors...)
}

// NumSuccessors reports n's out-degree.
func (t *Tree) NumSuccessors(n NodeID) int { return len(t.nodes[n].successors) }

// HasSelfLoop reports whether activateLoop() added a self-successor to n.
func (t *Tree) HasSelfLoop(n NodeID) bool { return t.nodes[n].hasSelfLoop }

// SilenceNode returns the node representing silence, if the lexicon
// declared one.
func (t *Tree) SilenceNode() (NodeID, bool) { return t.silenceNode, t.hasSilence }

// EndLabelNode returns the node spliced in by ActivateEndLabel, if any.
func (t *Tree) EndLabelNode() (NodeID, bool) { return t.endLabelNode, t.hasEndLabel }

// Penalties exposes the transition-penalty table backing
// TransitionPenalty and ExitPenalty.
func (t *Tree) Penalties() *PenaltyTable { return &t.penalties }

// TransitionPenalty looks up the penalty of moving from src to tgt,
// classifying the move as loop/forward by node identity.
func (t *Tree) TransitionPenalty(src, tgt NodeID) float64 {
	class := t.nodes[tgt].class
	if src == tgt {
		return t.penalties.Loop(class)
	}
	return t.penalties.Forward(class)
}

// ExitPenalty looks up the exit penalty for leaving via node n.
func (t *Tree) ExitPenalty(n NodeID) float64 {
	return t.penalties.Exit(t.nodes[n].class)
}

// IsRootType reports whether n is the root or a transit-root — nodes
// that carry no label and that LMLA clamps to score 0.
func (t *Tree) IsRootType(n NodeID) bool {
	return t.nodes[n].label == InvalidLabel
}
