// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package sample implements phase 2 and phase 3 of the core pipeline,
// spec.md §4.2 (stratified sampling) and the sample-sort half of §4.3.
// Only hashed keys are sampled: classification (internal/classify) only
// ever needs per-sample-key counts, never the sampled record's payload.
package sample

import (
	"context"
	"math"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"

	"github.com/aristanetworks/semisort/internal/parallelfor"
)

// Plan computes the sampling probability p and sample count m for an
// input of size n, per spec.md §4.2: p = min(Cs / log2 n, 0.25),
// m = floor(n*p) - 1.
func Plan(n int, samplingConstant float64) (m int, p float64) {
	logn := math.Log2(float64(n))
	p = math.Min(samplingConstant/logn, 0.25)
	m = int(math.Floor(float64(n)*p)) - 1
	return m, p
}

// Select draws m sample indices from [0, n) using the reference's
// stratified scheme: for slot i in [0, m), mark index
// rand() mod m + floor(i/p). This yields approximately-uniform coverage
// of [0, n) with good cache behavior, since nearby slots draw from
// nearby strata of the input (spec.md §4.2).
//
// seed parameterizes a per-call RNG family; Select itself runs each
// stratum's draw on a generator freshly seeded for that index
// rather than one process-global generator, per spec.md §9's note that
// global rand() is a concurrency hazard.
func Select(ctx context.Context, n, m int, p float64, seed uint64) ([]int, error) {
	if m <= 0 {
		return nil, nil
	}
	idx := make([]int, m)
	err := parallelfor.For(ctx, m, func(i int) error {
		// Deterministic per-index seed keeps Select reproducible under a
		// fixed top-level seed (spec.md §8's determinism property)
		// without synchronizing on a shared generator.
		rng := rand.New(rand.NewSource(seed ^ uint64(i)*0x9E3779B97F4A7C15))
		base := int(math.Floor(float64(i) / p))
		pos := base + int(rng.Uint64()%uint64(m))
		if pos >= n {
			pos = n - 1
		}
		idx[i] = pos
		return nil
	})
	return idx, err
}

// Gather copies hashedKey[idx[i]] into a new slice, the sample S of
// spec.md §4.2's output.
func Gather(hashedKey []uint64, idx []int) []uint64 {
	s := make([]uint64, len(idx))
	for i, pos := range idx {
		s[i] = hashedKey[pos]
	}
	return s
}

// SortByHash integer-sorts s in place by value, the "sample sort" of
// spec.md §2 phase 3. Built on golang.org/x/exp/slices, already part of
// the dependency surface this module carries forward from its teacher.
func SortByHash(s []uint64) {
	slices.Sort(s)
}
