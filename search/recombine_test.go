// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package search

import (
	"math"
	"testing"

	"github.com/gaissmai/lvcsr/scorer"
)

func TestLogSumExpIdentityOnLogZero(t *testing.T) {
	if got := logSumExp(scorer.LogZero, -3.5); got != -3.5 {
		t.Fatalf("logSumExp(LogZero, -3.5) = %v, want -3.5", got)
	}
	if got := logSumExp(-3.5, scorer.LogZero); got != -3.5 {
		t.Fatalf("logSumExp(-3.5, LogZero) = %v, want -3.5", got)
	}
}

func TestLogSumExpCombinesTwoMasses(t *testing.T) {
	a, b := scorer.Score(-1.0), scorer.Score(-2.0)
	want := math.Log(math.Exp(float64(a)) + math.Exp(float64(b)))
	got := logSumExp(a, b)
	if math.Abs(float64(got)-want) > 1e-9 {
		t.Fatalf("logSumExp(%v, %v) = %v, want %v", a, b, got, want)
	}
}

func TestLogSumExpIsCommutative(t *testing.T) {
	a, b := scorer.Score(-0.25), scorer.Score(-7.75)
	if logSumExp(a, b) != logSumExp(b, a) {
		t.Fatalf("logSumExp not commutative: %v vs %v", logSumExp(a, b), logSumExp(b, a))
	}
}
