// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bits

import (
	"iter"
	"math/bits"
)

// All iterates over all the set bits in ascending order.
func (b Set) All() iter.Seq[uint] {
	return func(yield func(u uint) bool) {
		for idx, word := range b {
			for word != 0 {
				u := uint(idx)<<log2WordSize + uint(bits.TrailingZeros64(word))

				if !yield(u) {
					return
				}

				word &= word - 1
			}
		}
	}
}
