// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bits

import "testing"

func TestArrayInsertGetDelete(t *testing.T) {
	var a Array[string]

	if _, ok := a.Get(5); ok {
		t.Fatal("empty array must not report a value at 5")
	}

	if exists := a.InsertAt(5, "five"); exists {
		t.Fatal("InsertAt on empty slot must report !exists")
	}
	if exists := a.InsertAt(1, "one"); exists {
		t.Fatal("InsertAt on empty slot must report !exists")
	}
	if exists := a.InsertAt(5, "FIVE"); !exists {
		t.Fatal("InsertAt overwriting a slot must report exists")
	}

	v, ok := a.Get(5)
	if !ok || v != "FIVE" {
		t.Fatalf("Get(5) = %q, %v, want FIVE, true", v, ok)
	}

	v, ok = a.Get(1)
	if !ok || v != "one" {
		t.Fatalf("Get(1) = %q, %v, want one, true", v, ok)
	}

	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}

	del, exists := a.DeleteAt(1)
	if !exists || del != "one" {
		t.Fatalf("DeleteAt(1) = %q, %v, want one, true", del, exists)
	}

	if _, ok := a.Get(1); ok {
		t.Fatal("deleted slot must no longer report a value")
	}

	if a.Len() != 1 {
		t.Fatalf("Len() after delete = %d, want 1", a.Len())
	}
}

func TestArrayCopyIndependence(t *testing.T) {
	var a Array[int]
	a.InsertAt(0, 10)
	a.InsertAt(64, 20)

	b := a.Copy()
	b.InsertAt(128, 30)

	if _, ok := a.Get(128); ok {
		t.Fatal("mutating the copy must not affect the original")
	}
	if v, ok := b.Get(0); !ok || v != 10 {
		t.Fatal("copy must preserve existing entries")
	}
}
