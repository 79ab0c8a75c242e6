// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package scatter

import (
	"context"
	"testing"

	"github.com/aristanetworks/semisort/internal/bucket"
	"github.com/aristanetworks/semisort/internal/recordtype"
)

func TestHeavyPlacesAllRecordsOfOneKey(t *testing.T) {
	records := make([]recordtype.Record[int, int], 100)
	for i := range records {
		records[i] = recordtype.Record[int, int]{Obj: i, Key: 5, HashedKey: 5}
	}
	table := bucket.NewTable(1)
	table.Insert(bucket.Bucket{BucketID: 5, Offset: 0, Size: 256, IsHeavy: true})

	scratch := NewScratch[int, int](256)
	opt := Options{PartitionSize: 8, MaxLaps: 16, Seed: 1}
	if err := Heavy(context.Background(), records, scratch, table, opt); err != nil {
		t.Fatalf("Heavy: %v", err)
	}

	count := 0
	for _, r := range scratch.Records {
		if !r.Empty() {
			if r.HashedKey != 5 {
				t.Fatalf("unexpected hashed key %d in scratch", r.HashedKey)
			}
			count++
		}
	}
	if count != 100 {
		t.Fatalf("placed %d records, want 100", count)
	}
}

func TestLightSkipsHeavyMatches(t *testing.T) {
	records := []recordtype.Record[int, int]{
		{Obj: 0, Key: 1, HashedKey: 1}, // heavy
		{Obj: 1, Key: 2, HashedKey: 2}, // light
	}
	table := bucket.NewTable(2)
	table.Insert(bucket.Bucket{BucketID: 1, Offset: 0, Size: 8, IsHeavy: true})
	table.Insert(bucket.Bucket{BucketID: 0, Offset: 8, Size: 8, IsHeavy: false}) // range [0,4) -> bucket_id 0

	scratch := NewScratch[int, int](16)
	opt := Options{PartitionSize: 2, MaxLaps: 16, Seed: 2}
	if err := Light(context.Background(), records, scratch, table, 4, opt); err != nil {
		t.Fatalf("Light: %v", err)
	}

	var placed []recordtype.Record[int, int]
	for _, r := range scratch.Records {
		if !r.Empty() {
			placed = append(placed, r)
		}
	}
	if len(placed) != 1 || placed[0].HashedKey != 2 {
		t.Fatalf("expected only the light record (hashedKey=2) to be placed, got %+v", placed)
	}
}

func TestInsertReportsProbeExhausted(t *testing.T) {
	b := bucket.Bucket{BucketID: 1, Offset: 0, Size: 1}
	scratch := NewScratch[int, int](1)
	scratch.Claims[0] = 999 // pre-claimed by someone else

	records := []recordtype.Record[int, int]{{HashedKey: 1}}
	table := bucket.NewTable(1)
	table.Insert(bucket.Bucket{BucketID: 1, Offset: 0, Size: 1, IsHeavy: true})

	opt := Options{PartitionSize: 1, MaxLaps: 1, Seed: 3}
	err := Heavy(context.Background(), records, scratch, table, opt)
	if err == nil {
		t.Fatal("expected a probe-exhausted error")
	}
	pe, ok := err.(*ProbeExhaustedError)
	if !ok {
		t.Fatalf("got error of type %T, want *ProbeExhaustedError", err)
	}
	if pe.BucketID != b.BucketID {
		t.Fatalf("got bucket id %d, want %d", pe.BucketID, b.BucketID)
	}
	if scratch.Retries != 1 {
		t.Fatalf("got Retries=%d, want 1 for the single failed CAS before giving up", scratch.Retries)
	}
}
