// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package pack implements phase 8 of the core pipeline, spec.md §4.6:
// compact the scratch array A' back into the caller's array A, removing
// every empty slot, in three steps — parallel per-chunk compaction,
// a sequential prefix sum over chunk counts, then parallel copy of each
// chunk's compacted prefix to its final offset.
package pack

import (
	"context"

	"github.com/aristanetworks/semisort/internal/parallelfor"
	"github.com/aristanetworks/semisort/internal/recordtype"
)

// MaxPartitions is spec.md §4.6's P = min(1000, |A'|): the hardcoded
// (but, per spec.md §9, tunable) number of chunks the scratch array is
// split into. The sequential prefix sum over at most this many entries
// is cheap enough to not need its own parallel_for.
const MaxPartitions = 1000

// Run compacts scratch into out, which must have length >= the number
// of non-empty records in scratch (by the conservation invariant of
// spec.md §3, that is exactly n). It returns the number of records
// written to out.
func Run[O, K any](ctx context.Context, scratch []recordtype.Record[O, K], out []recordtype.Record[O, K]) (int, error) {
	if len(scratch) == 0 {
		return 0, nil
	}
	numPartitions := MaxPartitions
	if numPartitions > len(scratch) {
		numPartitions = len(scratch)
	}
	chunkLen := (len(scratch) + numPartitions - 1) / numPartitions

	counts := make([]int, numPartitions)
	err := parallelfor.For(ctx, numPartitions, func(p int) error {
		start := p * chunkLen
		end := start + chunkLen
		if end > len(scratch) {
			end = len(scratch)
		}
		counts[p] = recordtype.Compact(scratch[start:end])
		return nil
	})
	if err != nil {
		return 0, err
	}

	offsets := make([]int, numPartitions)
	total := 0
	for p := 0; p < numPartitions; p++ {
		offsets[p] = total
		total += counts[p]
	}

	err = parallelfor.For(ctx, numPartitions, func(p int) error {
		if counts[p] == 0 {
			return nil
		}
		start := p * chunkLen
		copy(out[offsets[p]:offsets[p]+counts[p]], scratch[start:start+counts[p]])
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
