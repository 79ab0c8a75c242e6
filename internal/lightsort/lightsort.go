// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package lightsort implements phase 7's ordering half of the core
// pipeline, spec.md §4.5: sort each light bucket's slot range
// in place by hashed key, then compact it so the bucket's non-empty
// records occupy a prefix and every empty slot moves to the tail.
// Heavy buckets need none of this: every record in a heavy bucket
// already shares the same hashed key (spec.md §4.5).
package lightsort

import (
	"context"

	"golang.org/x/exp/slices"

	"github.com/aristanetworks/semisort/internal/bucket"
	"github.com/aristanetworks/semisort/internal/parallelfor"
	"github.com/aristanetworks/semisort/internal/recordtype"
)

// Run sorts and compacts every light bucket in lightBuckets in parallel,
// one parallel_for task per bucket.
func Run[O, K any](ctx context.Context, records []recordtype.Record[O, K], lightBuckets []bucket.Bucket) error {
	return parallelfor.For(ctx, len(lightBuckets), func(i int) error {
		b := lightBuckets[i]
		slice := records[b.Offset : b.Offset+b.Size]
		sortBucket(slice)
		recordtype.Compact(slice)
		return nil
	})
}

// sortBucket is the "parallel_sort_inplace" primitive of spec.md §6,
// applied to one bucket's slot range. Empty slots (hashed key 0) sort
// first, ahead of every real key, which recordtype.Compact then moves to
// the tail.
func sortBucket[O, K any](slice []recordtype.Record[O, K]) {
	slices.SortFunc(slice, func(a, b recordtype.Record[O, K]) bool {
		return a.HashedKey < b.HashedKey
	})
}
