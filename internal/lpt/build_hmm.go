// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpt

import "github.com/gaissmai/lvcsr/lexicon"

// HMMState is one node of an externally supplied state-tying graph.
type HMMState struct {
	Label       int32 // emission label index, InvalidLabel for word-boundary states
	IsTransitRoot bool
	Class       TransitionClass
	Successors  []int // indices into HMMSource.States
	Exit        *Exit // non-nil if this state is a word end
}

// HMMSource is the pre-existing state-tying graph consumed by the HMM
// topology builder. Building the state-tying graph itself — from a
// phonetic context-dependency tree and a Gaussian mixture inventory —
// is out of scope; this module only walks it.
type HMMSource struct {
	States []HMMState
	Root   int
	TDP    struct{ Root, Default, Special TDP }
}

// buildHMM performs a breadth-first walk of src, mapping word-boundary
// states to a single shared root and feeding the acoustic model's TDPs
// into the 3-class penalty table.
func buildHMM(cfg Config, lex *lexicon.Lexicon) (*Tree, error) {
	src := cfg.HMM
	b := newBuilder()

	mapped := make(map[int]NodeID, len(src.States))
	mapped[src.Root] = Root

	queue := []int{src.Root}
	visited := map[int]bool{src.Root: true}
	exited := make(map[NodeID]bool)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curID := mapped[cur]
		state := src.States[cur]

		for _, succIdx := range state.Successors {
			succ := src.States[succIdx]

			var succID NodeID
			if succ.IsTransitRoot {
				// all transit-roots collapse onto the shared root,
				// re-entry point for cross-word transitions.
				succID = Root
				mapped[succIdx] = Root
			} else if existing, ok := mapped[succIdx]; ok {
				succID = existing
			} else {
				succID = b.addNode(succ.Label, succ.Class)
				mapped[succIdx] = succID
			}

			b.addSuccessor(curID, succID)

			// succID is reached via one edge per predecessor sharing this
			// tied state; only the first visit registers its exit, or
			// word-end emission would be double-counted once per
			// incoming edge.
			if succ.Exit != nil && !exited[succID] {
				exited[succID] = true
				b.addExit(succID, *succ.Exit)
			}

			if !visited[succIdx] {
				visited[succIdx] = true
				queue = append(queue, succIdx)
			}
		}
	}

	tree := b.finish(TopologyHMM, lex.SilenceLemma, Root, lex.HasSilence)
	tree.penalties = FromTDP(src.TDP.Root, src.TDP.Default, src.TDP.Special)
	return tree, nil
}
