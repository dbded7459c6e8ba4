// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bits

// Array is a generic popcount-compressed sparse array with payload T:
// one bit per possible index plus one slice slot per index actually
// present, so a densely-labelled domain costs one bit where a plain
// map would cost a hash bucket.
//
// Adapted from the routing-table trie's octet-indexed sparse array:
// the compression scheme is unchanged, only the domain of the index
// moved from "octet value" to whatever small dense key a caller has.
type Array[T any] struct {
	Set
	Items []T
}

// Get returns the value stored at i, if any.
func (a *Array[T]) Get(i uint) (value T, ok bool) {
	if a.Test(i) {
		return a.Items[a.Rank0(i)], true
	}
	return
}

// MustGet returns the value at i. Callers must have checked Test(i)
// first; behavior is undefined otherwise.
func (a *Array[T]) MustGet(i uint) T {
	return a.Items[a.Rank0(i)]
}

// Len returns the number of items currently stored.
func (a *Array[T]) Len() int {
	return len(a.Items)
}

// InsertAt stores value at index i, overwriting any existing value and
// reporting whether one was already present.
func (a *Array[T]) InsertAt(i uint, value T) (exists bool) {
	if a.Len() != 0 && a.Test(i) {
		a.Items[a.Rank0(i)] = value
		return true
	}

	rank0 := a.Rank0(i)
	a.MustSet(i)
	a.insertItem(rank0, value)

	return false
}

// DeleteAt removes the value at index i, if present.
func (a *Array[T]) DeleteAt(i uint) (value T, exists bool) {
	if a.Len() == 0 || !a.Test(i) {
		return
	}

	rank0 := a.Rank0(i)
	value = a.Items[rank0]

	a.deleteItem(rank0)
	a.MustClear(i)

	return value, true
}

// Copy returns a shallow copy of a; elements are copied by assignment.
func (a *Array[T]) Copy() *Array[T] {
	if a == nil {
		return nil
	}

	return &Array[T]{
		Set:   a.Set.Clone(),
		Items: append(a.Items[:0:0], a.Items...),
	}
}

func (a *Array[T]) insertItem(i int, item T) {
	var zero T
	a.Items = append(a.Items, zero)
	copy(a.Items[i+1:], a.Items[i:])
	a.Items[i] = item
}

func (a *Array[T]) deleteItem(i int) {
	var zero T

	nl := len(a.Items) - 1
	copy(a.Items[i:], a.Items[i+1:])
	a.Items[nl] = zero
	a.Items = a.Items[:nl]
}
