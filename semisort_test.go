// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package semisort

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/rand"

	"github.com/aristanetworks/semisort/test"
)

func frequency(records []Record[int, int]) map[int]int {
	f := make(map[int]int, len(records))
	for _, r := range records {
		f[r.Key]++
	}
	return f
}

func assertContiguous(t *testing.T, records []Record[int, int]) {
	t.Helper()
	seen := make(map[int]bool)
	for i := 0; i < len(records); {
		key := records[i].Key
		if seen[key] {
			t.Fatalf("key %d reappears at index %d after its run ended", key, i)
		}
		seen[key] = true
		j := i
		for j < len(records) && records[j].Key == key {
			j++
		}
		i = j
	}
}

func hashTestInput(n int, keyRange int) []Record[int, int] {
	rng := rand.New(rand.NewSource(42))
	records := make([]Record[int, int], n)
	for i := range records {
		records[i] = Record[int, int]{Obj: i, Key: int(rng.Uint64() % uint64(keyRange))}
	}
	return records
}

func TestSortZeroRecords(t *testing.T) {
	var records []Record[int, int]
	if err := Sort(context.Background(), records, DefaultConfig()); err != nil {
		t.Fatalf("Sort: %v", err)
	}
}

func TestSortSingleRecord(t *testing.T) {
	records := []Record[int, int]{{Obj: 1, Key: 7}}
	if err := Sort(context.Background(), records, DefaultConfig()); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if records[0].Key != 7 || records[0].Obj != 1 {
		t.Fatalf("got %+v", records[0])
	}
}

func TestSortAllEqualKeys(t *testing.T) {
	const n = 500
	records := make([]Record[int, int], n)
	for i := range records {
		records[i] = Record[int, int]{Obj: i, Key: 9}
	}
	before := frequency(records)
	if err := Sort(context.Background(), records, DefaultConfig()); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if len(records) != n {
		t.Fatalf("got %d records, want %d", len(records), n)
	}
	assertContiguous(t, records)
	if diff := test.Diff(before, frequency(records)); diff != "" {
		t.Fatalf("frequency changed: %s", diff)
	}
}

func TestSortAllDistinctKeys(t *testing.T) {
	const n = 2000
	records := make([]Record[int, int], n)
	for i := range records {
		records[i] = Record[int, int]{Obj: i, Key: i}
	}
	before := frequency(records)
	if err := Sort(context.Background(), records, DefaultConfig()); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	assertContiguous(t, records)
	if diff := test.Diff(before, frequency(records)); diff != "" {
		t.Fatalf("frequency changed: %s", diff)
	}
}

func TestSortPreservesMultisetUnderSkew(t *testing.T) {
	const n = 20000
	records := hashTestInput(n, 37)
	before := frequency(records)
	cfg := DefaultConfig()
	cfg.Seed = 12345
	if err := Sort(context.Background(), records, cfg); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if len(records) != n {
		t.Fatalf("got %d records, want %d", len(records), n)
	}
	assertContiguous(t, records)
	if diff := test.Diff(before, frequency(records)); diff != "" {
		t.Fatalf("frequency changed: %s", diff)
	}
}

func TestSortPreservesObjPairedWithKey(t *testing.T) {
	const n = 5000
	records := hashTestInput(n, 64)
	pairs := make(map[int]int, n)
	for _, r := range records {
		pairs[r.Obj] = r.Key
	}
	if err := Sort(context.Background(), records, DefaultConfig()); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	for _, r := range records {
		if pairs[r.Obj] != r.Key {
			t.Fatalf("record Obj=%d now paired with Key=%d, want %d", r.Obj, r.Key, pairs[r.Obj])
		}
	}
}

func TestSortIsDeterministicUnderFixedSeed(t *testing.T) {
	const n = 8000
	a := hashTestInput(n, 50)
	b := make([]Record[int, int], n)
	copy(b, a)

	cfg := DefaultConfig()
	cfg.Seed = 99
	if err := Sort(context.Background(), a, cfg); err != nil {
		t.Fatalf("Sort(a): %v", err)
	}
	if err := Sort(context.Background(), b, cfg); err != nil {
		t.Fatalf("Sort(b): %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("two runs with the same seed diverged (-first +second):\n%s", diff)
	}
}

func TestSortWithHashSetsNonZeroHashedKeyConsistentlyPerKey(t *testing.T) {
	const n = 3000
	records := hashTestInput(n, 20)
	hash := func(k int) uint64 { return uint64(k)*2 + 1 }
	cfg := DefaultConfig()
	if err := SortWithHash(context.Background(), records, hash, cfg); err != nil {
		t.Fatalf("SortWithHash: %v", err)
	}
	assertContiguous(t, records)
	seen := make(map[int]uint64, 20)
	for _, r := range records {
		if r.HashedKey == 0 {
			t.Fatalf("record with Key=%d has HashedKey=0, the reserved empty-slot sentinel", r.Key)
		}
		if prior, ok := seen[r.Key]; ok {
			if prior != r.HashedKey {
				t.Fatalf("Key=%d got two different HashedKey values: %d and %d", r.Key, prior, r.HashedKey)
			}
		} else {
			seen[r.Key] = r.HashedKey
		}
	}
}
