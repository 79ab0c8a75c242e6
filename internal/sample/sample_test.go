// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package sample

import (
	"context"
	"testing"
)

func TestPlanSampleProbabilityCapped(t *testing.T) {
	_, p := Plan(4, 3)
	if p > 0.25 {
		t.Fatalf("p=%f should be capped at 0.25", p)
	}
}

func TestSelectIndicesInRange(t *testing.T) {
	const n = 10000
	m, p := Plan(n, 3)
	idx, err := Select(context.Background(), n, m, p, 7)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(idx) != m {
		t.Fatalf("got %d indices, want %d", len(idx), m)
	}
	for _, i := range idx {
		if i < 0 || i >= n {
			t.Fatalf("index %d out of range [0, %d)", i, n)
		}
	}
}

func TestSelectDeterministicForFixedSeed(t *testing.T) {
	const n = 5000
	m, p := Plan(n, 3)
	a, err := Select(context.Background(), n, m, p, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Select(context.Background(), n, m, p, 42)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d differs across runs with the same seed: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestGatherAndSort(t *testing.T) {
	hashedKey := []uint64{9, 1, 7, 3, 5}
	idx := []int{0, 1, 2, 3, 4}
	s := Gather(hashedKey, idx)
	SortByHash(s)
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			t.Fatalf("sample not sorted at index %d: %v", i, s)
		}
	}
}
