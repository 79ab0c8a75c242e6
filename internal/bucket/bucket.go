// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package bucket implements the bucket descriptor and the concurrent
// bucket table that planning publishes into and scatter reads from. The
// table is a sharded, open-addressed hash table in the spirit of
// goarista/hashmap's Robin Hood scheme, specialized to the case the
// semisort core actually needs: a fixed set of uint64-keyed entries,
// written once per shard under a lock during planning (spec.md §4.3) and
// read many times, lock-free from the caller's point of view, during
// scatter (spec.md §4.4).
//
// This is the "sharded map with per-shard locks" alternative that
// spec.md §9 names as the simpler counterpart to a raw CAS-on-key-field
// open-addressed table; we take it because Go's RWMutex composes more
// predictably across goroutines than hand-rolled lock-free probing, and
// because insert only ever happens during the single-threaded-per-shard
// planning phase.
package bucket

// Bucket describes a contiguous slot range in the output scratch array
// reserved for one heavy key or one light-key range.
type Bucket struct {
	BucketID uint64
	Offset   uint32
	Size     uint32
	IsHeavy  bool
}

// Sentinel is returned by Find on a miss, matching spec.md §3's
// "{0,0,0,false}" sentinel.
var Sentinel = Bucket{}

// IsSentinel reports whether b is the miss sentinel.
func (b Bucket) IsSentinel() bool {
	return b == Sentinel
}
