// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpt

import "hash/fnv"

// Image is an exported, gob-friendly snapshot of a Tree: everything
// Encode/DecodeImage need to round-trip a built tree through a binary
// cache file, with no unexported fields for gob to stumble over.
type Image struct {
	Topology Topology

	NodeLabels      []int32
	NodeClasses     []TransitionClass
	NodeSuccessors  [][]NodeID
	NodeExits       [][]ExitID
	NodeHasSelfLoop []bool

	Exits []Exit

	SilenceNode  NodeID
	HasSilence   bool
	EndLabelNode NodeID
	HasEndLabel  bool

	Penalties PenaltyTable
}

// Encode snapshots t into an Image.
func (t *Tree) Encode() Image {
	n := len(t.nodes)
	img := Image{
		Topology:        t.Topology,
		NodeLabels:      make([]int32, n),
		NodeClasses:     make([]TransitionClass, n),
		NodeSuccessors:  make([][]NodeID, n),
		NodeExits:       make([][]ExitID, n),
		NodeHasSelfLoop: make([]bool, n),
		Exits:           append([]Exit(nil), t.exits...),
		SilenceNode:     t.silenceNode,
		HasSilence:      t.hasSilence,
		EndLabelNode:    t.endLabelNode,
		HasEndLabel:     t.hasEndLabel,
		Penalties:       t.penalties,
	}
	for i, nd := range t.nodes {
		img.NodeLabels[i] = nd.label
		img.NodeClasses[i] = nd.class
		img.NodeSuccessors[i] = append([]NodeID(nil), nd.successors...)
		img.NodeExits[i] = append([]ExitID(nil), nd.exits...)
		img.NodeHasSelfLoop[i] = nd.hasSelfLoop
	}
	return img
}

// DecodeImage rebuilds a Tree from a previously encoded Image.
func DecodeImage(img Image) *Tree {
	nodes := make([]node, len(img.NodeLabels))
	for i := range nodes {
		nodes[i] = node{
			label:       img.NodeLabels[i],
			class:       img.NodeClasses[i],
			successors:  img.NodeSuccessors[i],
			exits:       img.NodeExits[i],
			hasSelfLoop: img.NodeHasSelfLoop[i],
		}
	}
	return &Tree{
		Topology:     img.Topology,
		nodes:        nodes,
		exits:        append([]Exit(nil), img.Exits...),
		silenceNode:  img.SilenceNode,
		hasSilence:   img.HasSilence,
		endLabelNode: img.EndLabelNode,
		hasEndLabel:  img.HasEndLabel,
		penalties:    img.Penalties,
	}
}

// ContentChecksum hashes node, edge and exit counts, catching a stale
// or truncated image without re-hashing every label and penalty.
func (img Image) ContentChecksum() uint32 {
	h := fnv.New32a()
	var numEdges int
	for _, s := range img.NodeSuccessors {
		numEdges += len(s)
	}
	var buf [8]byte
	putU32 := func(v uint32) {
		buf[0], buf[1], buf[2], buf[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
		h.Write(buf[:4])
	}
	putU32(uint32(len(img.NodeLabels)))
	putU32(uint32(numEdges))
	putU32(uint32(len(img.Exits)))
	putU32(uint32(img.Topology))
	return h.Sum32()
}
