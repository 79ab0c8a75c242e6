// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package main

import "testing"

func TestCheckAcceptsContiguousPermutation(t *testing.T) {
	in := []int64{1, 2, 1, 3, 2, 1}
	out := []int64{1, 1, 1, 2, 2, 3}
	if err := check(in, out); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestCheckRejectsSplitRun(t *testing.T) {
	in := []int64{1, 2, 1, 2}
	out := []int64{1, 2, 1, 2}
	if err := check(in, out); err == nil {
		t.Fatal("expected an error for a non-contiguous run")
	}
}

func TestCheckRejectsForeignKey(t *testing.T) {
	in := []int64{1, 2, 3}
	out := []int64{1, 2, 4}
	if err := check(in, out); err == nil {
		t.Fatal("expected an error for a key absent from the input")
	}
}

func TestCheckRejectsWrongCount(t *testing.T) {
	in := []int64{1, 1, 2}
	out := []int64{1, 2, 2}
	if err := check(in, out); err == nil {
		t.Fatal("expected an error for a frequency mismatch")
	}
}
