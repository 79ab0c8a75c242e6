// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package classify

import "testing"

func TestRunLengthEncode(t *testing.T) {
	runs := RunLengthEncode([]uint64{1, 1, 1, 2, 3, 3})
	want := []KeyCount{{1, 3}, {2, 1}, {3, 2}}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs, want %d: %v", len(runs), len(want), runs)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Fatalf("run %d: got %+v, want %+v", i, runs[i], want[i])
		}
	}
}

func TestRunLengthEncodeEmpty(t *testing.T) {
	if got := RunLengthEncode(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestRunLengthEncodeSingleton(t *testing.T) {
	runs := RunLengthEncode([]uint64{5})
	if len(runs) != 1 || runs[0] != (KeyCount{5, 1}) {
		t.Fatalf("got %v", runs)
	}
}

func TestIsHeavyThreshold(t *testing.T) {
	gamma := Gamma(1024, 1)
	if IsHeavy(int(gamma), gamma) {
		t.Fatal("count exactly at gamma should not be heavy (strict >)")
	}
	if !IsHeavy(int(gamma)+1, gamma) {
		t.Fatal("count above gamma should be heavy")
	}
}

func TestBucketCapacityIsPowerOfTwo(t *testing.T) {
	size := BucketCapacity(50, 100000, 0.1, 1.25)
	if size == 0 || size&(size-1) != 0 {
		t.Fatalf("bucket size %d is not a power of two", size)
	}
}

func TestBucketCapacityGrowsWithCount(t *testing.T) {
	small := BucketCapacity(10, 100000, 0.1, 1.25)
	large := BucketCapacity(10000, 100000, 0.1, 1.25)
	if large <= small {
		t.Fatalf("expected larger sample count to need a larger bucket: %d vs %d", large, small)
	}
}

func TestClassifySplitsHeavyAndLight(t *testing.T) {
	runs := []KeyCount{{HashedKey: 0, Count: 100}, {HashedKey: 5, Count: 1}, {HashedKey: 6, Count: 1}}
	c := Classify(runs, 10, 4)
	if len(c.Heavy) != 1 || c.Heavy[0].HashedKey != 0 {
		t.Fatalf("expected exactly key 0 to be heavy, got %+v", c.Heavy)
	}
	// keys 5 and 6 both fall in bucket index 1 (floor(5/4)==floor(6/4)==1)
	if c.LightBucketCount[1] != 2 {
		t.Fatalf("expected light bucket 1 to have count 2, got %d", c.LightBucketCount[1])
	}
}

func TestNumLightBucketsPositive(t *testing.T) {
	if NumLightBuckets(100000, 2) <= 0 {
		t.Fatal("expected a positive number of light buckets")
	}
}
