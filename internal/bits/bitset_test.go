// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bits

import "testing"

func TestSetClear(t *testing.T) {
	var s Set

	for _, i := range []uint{0, 1, 63, 64, 65, 200, 4095} {
		if s.Test(i) {
			t.Fatalf("bit %d should not be set yet", i)
		}

		s.MustSet(i)

		if !s.Test(i) {
			t.Fatalf("bit %d should be set", i)
		}

		s.MustClear(i)

		if s.Test(i) {
			t.Fatalf("bit %d should be cleared", i)
		}
	}
}

func TestRank0(t *testing.T) {
	var s Set

	for _, b := range []uint{2, 5, 9, 64, 130} {
		s.MustSet(b)
	}

	want := map[uint]int{
		0:   0,
		2:   0,
		3:   1,
		5:   1,
		6:   2,
		9:   2,
		10:  3,
		64:  3,
		65:  4,
		130: 4,
		131: 5,
	}

	for i, rank := range want {
		if got := s.Rank0(i); got != rank {
			t.Errorf("Rank0(%d) = %d, want %d", i, got, rank)
		}
	}
}

func TestCount(t *testing.T) {
	var s Set
	for i := uint(0); i < 300; i += 7 {
		s.MustSet(i)
	}

	if got, want := s.Count(), 43; got != want {
		t.Errorf("Count() = %d, want %d", got, want)
	}
}

func TestClone(t *testing.T) {
	var s Set
	s.MustSet(3)
	s.MustSet(77)

	c := s.Clone()
	c.MustSet(1000)

	if s.Test(1000) {
		t.Error("mutating the clone must not affect the original")
	}
	if !c.Test(3) || !c.Test(77) {
		t.Error("clone must carry over the original bits")
	}
}

func TestAsSlice(t *testing.T) {
	var s Set
	want := []uint{1, 5, 64, 65, 127}
	for _, b := range want {
		s.MustSet(b)
	}

	got := s.AsSlice(nil)
	if len(got) != len(want) {
		t.Fatalf("AsSlice() len = %d, want %d", len(got), len(want))
	}
	for i, b := range want {
		if got[i] != b {
			t.Errorf("AsSlice()[%d] = %d, want %d", i, got[i], b)
		}
	}
}
