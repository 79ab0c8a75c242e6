// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package planner implements the second half of phase 4 (spec.md §4.3,
// "Plan buckets"): lay heavy buckets out first in classification order,
// then light buckets in index order, compute each bucket's offset in
// the scratch array A', and publish every descriptor into the
// concurrent bucket table.
package planner

import (
	"context"

	"github.com/aristanetworks/semisort/internal/bucket"
	"github.com/aristanetworks/semisort/internal/classify"
	"github.com/aristanetworks/semisort/internal/parallelfor"
)

// Plan is the output of bucket planning: every bucket descriptor (also
// published into Table) plus the size the scratch array A' must be
// allocated at.
type Plan struct {
	Table   *bucket.Table
	Buckets []bucket.Bucket
	// ScratchSize is the length A' must be allocated at. It is
	// offsetEnd + n, not just offsetEnd: spec.md §9 notes the legacy
	// reference sizes its buckets array this way even though no single
	// bucket's range extends past offsetEnd, and keeps the extra n
	// slack "without the necessity being derived from the paper". We
	// keep the same slack; it costs O(n) extra memory once, which the
	// spec's own memory-sizing section (§5) already budgets for, and
	// it is cheap insurance against any off-by-one in the capacity
	// formula's rounding.
	ScratchSize uint32
}

// Build lays out one bucket per heavy key (in the order given — callers
// pass classify.Classification.Heavy, which is in RLE/classification
// order) followed by one bucket per light-bucket index in
// [0, numLightBuckets), and inserts every descriptor into a fresh
// bucket.Table.
func Build(
	ctx context.Context,
	n int,
	heavy []classify.KeyCount,
	lightCount map[uint64]int,
	numLightBuckets int,
	lightBucketRange uint64,
	p, fc float64,
) (*Plan, error) {
	buckets := make([]bucket.Bucket, 0, len(heavy)+numLightBuckets)

	var offset uint32
	for _, h := range heavy {
		size := classify.BucketCapacity(h.Count, n, p, fc)
		buckets = append(buckets, bucket.Bucket{
			BucketID: h.HashedKey,
			Offset:   offset,
			Size:     size,
			IsHeavy:  true,
		})
		offset += size
	}
	for i := 0; i < numLightBuckets; i++ {
		count := lightCount[uint64(i)]
		size := classify.BucketCapacity(count, n, p, fc)
		buckets = append(buckets, bucket.Bucket{
			BucketID: uint64(i) * lightBucketRange,
			Offset:   offset,
			Size:     size,
			IsHeavy:  false,
		})
		offset += size
	}

	plan := &Plan{
		Table:       bucket.NewTable(len(buckets)),
		Buckets:     buckets,
		ScratchSize: offset + uint32(n),
	}

	err := parallelfor.For(ctx, len(buckets), func(i int) error {
		plan.Table.Insert(buckets[i])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}
