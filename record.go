// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package semisort implements a parallel semisort: given a slice of
// records tagged with a hash key, it permutes the slice so that all
// records sharing a key occupy a contiguous run, without requiring any
// total order between keys. It is weaker than a full sort, and that
// weakness is what lets it run in expected O(n) work by exploiting
// hashing and sampling to discover heavy/light key skew, rather than
// paying for a comparison sort.
package semisort

// Record is one element of the sequence being semisorted. Obj is the
// caller's opaque payload, Key is the domain key used to group records,
// and HashedKey is the derived 64-bit key that the algorithm actually
// operates on.
//
// HashedKey is never 0: 0 is reserved as the empty-slot sentinel in the
// scratch array used during scatter. A Record is "empty" iff HashedKey
// is 0; callers never construct an empty Record themselves.
type Record[O, K any] struct {
	Obj       O
	Key       K
	HashedKey uint64
}
