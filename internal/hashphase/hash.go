// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package hashphase implements phase 1 of the core pipeline, spec.md
// §4.1: derive a 64-bit hashed key per record, fully in parallel, with
// no dependency between records.
package hashphase

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/dchest/siphash"

	"github.com/aristanetworks/semisort/internal/parallelfor"
)

// Range returns k = floor(n^hashRangeK), the size of the hashed-key
// space, per spec.md §4.1.
func Range(n int, hashRangeK float64) uint64 {
	if n <= 0 {
		return 1
	}
	return uint64(math.Floor(math.Pow(float64(n), hashRangeK)))
}

// Run sets hashedKey[i] = hash(i) % k + 1 for every index, in
// parallel. The +1 keeps 0 reserved as the empty-slot sentinel (spec.md
// §3). hash need not be cryptographic; it only needs to behave like a
// uniform map into uint64 space, since correctness of heavy-key
// detection (spec.md §4.1's rationale) depends on collisions across
// distinct keys being vanishingly unlikely once k = n^K with K > 2.
func Run(ctx context.Context, n int, k uint64, hash func(i int) uint64, hashedKey []uint64) error {
	return parallelfor.For(ctx, n, func(i int) error {
		hashedKey[i] = hash(i)%k + 1
		return nil
	})
}

// Uint64 returns an H suitable for integer-keyed records: xxhash over
// the little-endian encoding of key XOR seed. cespare/xxhash is already part of
// the example pack's dependency surface (templexxx/u64 depends on it
// directly; it is an indirect dependency of the teacher itself), and is
// a much better-distributed default than Go's map hash for adversarial
// or skewed integer inputs.
func Uint64(seed uint64) func(uint64) uint64 {
	return func(key uint64) uint64 {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], key^seed)
		return xxhash.Sum64(b[:])
	}
}

// String returns an H suitable for string-keyed records.
func String() func(string) uint64 {
	return func(key string) uint64 {
		return xxhash.Sum64String(key)
	}
}

// Bytes returns an H suitable for []byte-keyed records.
func Bytes() func([]byte) uint64 {
	return xxhash.Sum64
}

// SipHashSeeded returns an H that hashes a string representation of a
// key through SipHash-2-4, keyed by seed. Sort (the generic-key entry
// point, which has no caller-supplied hash) uses this instead of
// String's plain xxhash: classification's heavy/light split depends on
// collisions across distinct keys being vanishingly unlikely, and an
// unkeyed hash lets an adversary who knows the algorithm pick keys that
// all land in one heavy bucket. Keying on seed closes that off for
// anyone who doesn't also know the seed.
func SipHashSeeded(seed uint64) func(string) uint64 {
	k0 := seed
	k1 := seed ^ 0x9E3779B97F4A7C15
	return func(s string) uint64 {
		return siphash.Hash(k0, k1, []byte(s))
	}
}
