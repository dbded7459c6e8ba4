// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package lmla implements the language-model look-ahead: a
// compressed, history-conditioned score table mapping each LPT node to
// a lower bound on the LM cost of any completion reachable from it.
package lmla

import (
	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/lm"
)

// NodeID indexes into an LMLA's compressed node table.
type NodeID int32

const noNode NodeID = -1

// exitRequest is one lemma lookup a node's direct-exit score is
// computed from.
type exitRequest struct {
	node      NodeID
	batchSlot int
}

// LMLA is the compressed DAG of look-ahead nodes built once per LPT
// and reused, with on-demand population, for every LM history.
type LMLA struct {
	lptToLMLA []NodeID // dense, indexed by lpt.NodeID
	numNodes  int

	// successors[n] holds n's LMLA successors in descending order, so a
	// single forward pass over node ids computes scores in
	// reverse-topological order.
	successors [][]NodeID

	transitNodeEnd NodeID // nodes >= this id were derived from transit-root LPT nodes

	exitRequests []exitRequest // one entry per LPT exit; exits with the same syntactic token sequence share a batch slot
	batchSeqs    [][]lm.Token  // batchSeqs[slot] is the sequence requested at that slot

	rootLike []bool // LMLA nodes that must clamp to 0 (root / end-label)

	unigram ScoreVector // precomputed at Build time as a safe fallback
}

// Build walks tree breadth-first, mapping root to LMLA node 0,
// compressing single-successor chains into their parent's node (unless
// that node is root-like and clamped to 0) and allocating a fresh node
// per branch otherwise. Transit-root nodes are processed in a second pass
// so their ids always follow non-transit ones.
func Build(tree *lpt.Tree, lex *lexicon.Lexicon, lookaheadLM lm.LanguageModel) *LMLA {
	n := tree.NumNodes()
	l := &LMLA{
		lptToLMLA: make([]NodeID, n),
	}
	for i := range l.lptToLMLA {
		l.lptToLMLA[i] = noNode
	}

	l.lptToLMLA[lpt.Root] = l.alloc()
	l.rootLike = append(l.rootLike, true)

	l.walk(tree, lpt.Root, false)
	l.transitNodeEnd = NodeID(l.numNodes)

	// second pass: any LPT node not yet mapped must be a transit-root
	// (or reachable only through one); assign fresh ids in a fixed,
	// deterministic order.
	for id := 0; id < n; id++ {
		node := lpt.NodeID(id)
		if l.lptToLMLA[node] == noNode {
			lmlaID := l.alloc()
			l.lptToLMLA[node] = lmlaID
			if tree.IsRootType(node) {
				l.rootLike = append(l.rootLike, true)
			} else {
				l.rootLike = append(l.rootLike, false)
			}
			l.walk(tree, node, true)
		}
	}

	l.collectExitRequests(tree, lex)
	l.unigram = l.populate(lookaheadLM, lookaheadLM.StartHistory())

	return l
}

// NumNodes returns the number of LMLA nodes.
func (l *LMLA) NumNodes() int { return l.numNodes }

func (l *LMLA) alloc() NodeID {
	id := NodeID(l.numNodes)
	l.numNodes++
	l.successors = append(l.successors, nil)
	return id
}

// walk assigns LMLA ids to lptNode's successors (minus any self-loop),
// compressing straight chains, and recurses. secondPass restricts
// traversal to nodes not already mapped, for the transit-root pass.
func (l *LMLA) walk(tree *lpt.Tree, lptNode lpt.NodeID, secondPass bool) {
	parentID := l.lptToLMLA[lptNode]

	var succs []lpt.NodeID
	for _, s := range tree.Successors(lptNode, nil) {
		if s == lptNode {
			continue // self-loop removed before LMLA construction
		}
		succs = append(succs, s)
	}

	if len(succs) == 1 && !l.rootLike[parentID] {
		child := succs[0]
		if l.lptToLMLA[child] != noNode {
			return // already visited via another path (DAG convergence)
		}
		l.lptToLMLA[child] = parentID
		l.walk(tree, child, secondPass)
		return
	}

	for _, child := range succs {
		if l.lptToLMLA[child] != noNode {
			addSuccessorDesc(&l.successors[parentID], l.lptToLMLA[child])
			continue
		}
		childID := l.alloc()
		l.lptToLMLA[child] = childID
		l.rootLike = append(l.rootLike, tree.IsRootType(child))
		addSuccessorDesc(&l.successors[parentID], childID)
		l.walk(tree, child, secondPass)
	}
}

func addSuccessorDesc(s *[]NodeID, v NodeID) {
	list := *s
	i := 0
	for i < len(list) && list[i] > v {
		i++
	}
	if i < len(list) && list[i] == v {
		return
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = v
	*s = list
}

// collectExitRequests registers one BatchRequest slot per distinct
// syntactic-token sequence reachable directly from an LMLA node.
func (l *LMLA) collectExitRequests(tree *lpt.Tree, lex *lexicon.Lexicon) {
	seqIndex := make(map[string]int)

	for nodeID := 0; nodeID < tree.NumNodes(); nodeID++ {
		n := lpt.NodeID(nodeID)
		if !tree.HasExit(n) {
			continue
		}
		lmlaNode := l.lptToLMLA[n]

		for _, eid := range tree.Exits(n) {
			exit := tree.Exit(eid)
			lemma, ok := lex.Lemmas[exit.Lemma]
			if !ok {
				continue
			}

			key := tokenKey(lemma.SyntacticTokens)
			slot, seen := seqIndex[key]
			if !seen {
				slot = len(l.batchSeqs)
				l.batchSeqs = append(l.batchSeqs, lemma.SyntacticTokens)
				seqIndex[key] = slot
			}

			l.exitRequests = append(l.exitRequests, exitRequest{node: lmlaNode, batchSlot: slot})
		}
	}
}

func tokenKey(tokens []string) string {
	// cheap, collision-free enough for a test-scale lookahead table.
	s := ""
	for _, t := range tokens {
		s += t + "\x1f"
	}
	return s
}

// NodeOf maps an LPT node to its LMLA node.
func (l *LMLA) NodeOf(n lpt.NodeID) NodeID { return l.lptToLMLA[n] }

// Unigram returns the pre-computed, history-free fallback vector.
func (l *LMLA) Unigram() ScoreVector { return l.unigram }
