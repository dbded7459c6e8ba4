// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lmla

import (
	"hash/fnv"

	"github.com/gaissmai/lvcsr/lm"
)

// Image is an exported, gob-friendly snapshot of an LMLA, with no
// unexported fields for gob to stumble over.
type Image struct {
	LPTToLMLA  []NodeID
	Successors [][]NodeID

	TransitNodeEnd NodeID

	ExitRequestNodes []NodeID
	ExitRequestSlots []int32
	BatchSeqs        [][]lm.Token

	RootLike []bool
	Unigram  []float64
}

// Encode snapshots l into an Image.
func (l *LMLA) Encode() Image {
	reqNodes := make([]NodeID, len(l.exitRequests))
	reqSlots := make([]int32, len(l.exitRequests))
	for i, r := range l.exitRequests {
		reqNodes[i] = r.node
		reqSlots[i] = int32(r.batchSlot)
	}

	succ := make([][]NodeID, len(l.successors))
	for i, s := range l.successors {
		succ[i] = append([]NodeID(nil), s...)
	}

	unigram := append([]float64(nil), l.unigram...)

	return Image{
		LPTToLMLA:        append([]NodeID(nil), l.lptToLMLA...),
		Successors:       succ,
		TransitNodeEnd:   l.transitNodeEnd,
		ExitRequestNodes: reqNodes,
		ExitRequestSlots: reqSlots,
		BatchSeqs:        append([][]lm.Token(nil), l.batchSeqs...),
		RootLike:         append([]bool(nil), l.rootLike...),
		Unigram:          unigram,
	}
}

// DecodeImage rebuilds an LMLA from a previously encoded Image.
func DecodeImage(img Image) *LMLA {
	exitRequests := make([]exitRequest, len(img.ExitRequestNodes))
	for i := range exitRequests {
		exitRequests[i] = exitRequest{node: img.ExitRequestNodes[i], batchSlot: int(img.ExitRequestSlots[i])}
	}

	unigram := ScoreVector(append([]float64(nil), img.Unigram...))

	return &LMLA{
		lptToLMLA:      img.LPTToLMLA,
		numNodes:       len(img.Successors),
		successors:     img.Successors,
		transitNodeEnd: img.TransitNodeEnd,
		exitRequests:   exitRequests,
		batchSeqs:      img.BatchSeqs,
		rootLike:       img.RootLike,
		unigram:        unigram,
	}
}

// ContentChecksum hashes node, edge and exit-request counts, catching
// a stale or truncated image without re-hashing every score.
func (img Image) ContentChecksum() uint32 {
	h := fnv.New32a()
	var numEdges int
	for _, s := range img.Successors {
		numEdges += len(s)
	}
	var buf [4]byte
	putU32 := func(v uint32) {
		buf[0], buf[1], buf[2], buf[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
		h.Write(buf[:])
	}
	putU32(uint32(len(img.Successors)))
	putU32(uint32(numEdges))
	putU32(uint32(len(img.ExitRequestNodes)))
	putU32(uint32(img.TransitNodeEnd))
	return h.Sum32()
}
