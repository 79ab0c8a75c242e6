// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package recordtype defines the record type shared by every phase
// package. It lives on its own, with no dependency on the root semisort
// package, purely so that internal/scatter, internal/lightsort and
// internal/pack can all name the same concrete generic struct that the
// root package's public Record type mirrors, without an import cycle
// (the root package imports all three of those phase packages).
package recordtype

// Record mirrors semisort.Record field-for-field.
type Record[O, K any] struct {
	Obj       O
	Key       K
	HashedKey uint64
}

// Empty reports whether r is an unfilled scratch slot (spec.md §3: a
// record is empty iff hashed_key == 0).
func (r Record[O, K]) Empty() bool {
	return r.HashedKey == 0
}

// Compact moves slice's non-empty records to a contiguous prefix,
// preserving their relative order, and zeroes the remainder. It returns
// the number of non-empty records moved. Both internal/lightsort's
// per-bucket compaction and internal/pack's chunk compaction (spec.md
// §4.5 and §4.6) are this same left-to-right "copy non-empty forward
// over empties" operation, just over different slot ranges.
func Compact[O, K any](slice []Record[O, K]) int {
	n := 0
	for _, r := range slice {
		if !r.Empty() {
			slice[n] = r
			n++
		}
	}
	var zero Record[O, K]
	for i := n; i < len(slice); i++ {
		slice[i] = zero
	}
	return n
}
