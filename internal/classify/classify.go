// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package classify implements phase 4 of the core pipeline, spec.md
// §4.3: run-length-encode the sorted sample, split hashed keys into
// heavy (dedicated bucket) and light (range-bucketed) classes, and size
// each bucket's slot range with the Chernoff-safe capacity formula.
package classify

import (
	"math"
)

// KeyCount is one run from the run-length-encoded, sorted sample: a
// distinct hashed key and how many times it appeared in the sample.
type KeyCount struct {
	HashedKey uint64
	Count     int
}

// RunLengthEncode compresses a sorted slice of hashed keys into runs.
// spec.md §9 flags the reference's off-by-one handling of the final
// sample ("differences[num_samples-1] = num_samples"); this
// implementation has no such edge case because it walks the slice
// directly instead of computing a difference array, and the last run is
// closed explicitly after the loop.
func RunLengthEncode(sorted []uint64) []KeyCount {
	if len(sorted) == 0 {
		return nil
	}
	runs := make([]KeyCount, 0, len(sorted))
	cur := KeyCount{HashedKey: sorted[0], Count: 1}
	for _, h := range sorted[1:] {
		if h == cur.HashedKey {
			cur.Count++
			continue
		}
		runs = append(runs, cur)
		cur = KeyCount{HashedKey: h, Count: 1}
	}
	runs = append(runs, cur)
	return runs
}

// Gamma returns γ = Δ·log2(n), the heavy/light classification threshold
// of spec.md §4.3.
func Gamma(n int, delta float64) float64 {
	return delta * math.Log2(float64(n))
}

// IsHeavy reports whether a sample count exceeds γ.
func IsHeavy(count int, gamma float64) bool {
	return float64(count) > gamma
}

// Classification splits the RLE'd sample into heavy keys (each gets its
// own bucket) and light buckets (grouped by range, keyed by bucket
// index i = floor(hashedKey / bucketRange), not yet multiplied by
// bucketRange into a bucket_id — that's internal/planner's job once
// offsets are known).
type Classification struct {
	Heavy            []KeyCount
	LightBucketCount map[uint64]int
}

// Classify walks the RLE'd, sorted sample once and buckets each run into
// Heavy or a light-bucket-index tally, per spec.md §4.3's final
// paragraph: light bucket counts are the sum of sample counts of every
// light key whose hashed key falls in that bucket's range.
func Classify(runs []KeyCount, gamma float64, bucketRange uint64) Classification {
	c := Classification{LightBucketCount: make(map[uint64]int)}
	for _, r := range runs {
		if IsHeavy(r.Count, gamma) {
			c.Heavy = append(c.Heavy, r)
			continue
		}
		idx := r.HashedKey / bucketRange
		c.LightBucketCount[idx] += r.Count
	}
	return c
}

// BucketCapacity implements the capacity formula of spec.md §4.3 for a
// (possibly summed) sample count c:
//
//	L        = c*log2(n)
//	size_raw = (c + L + sqrt(L^2 + 2*c*L*Fc)) / p
//	size     = 2^ceil(log2(1.1 * size_raw))
//
// The square-root term is the Chernoff-safe over-provision; 1.1 is slack;
// rounding to a power of two simplifies modular probing in scatter.
func BucketCapacity(c int, n int, p, fc float64) uint32 {
	if c <= 0 {
		c = 1
	}
	logn := math.Log2(float64(n))
	cf := float64(c)
	l := cf * logn
	sizeRaw := (cf + l + math.Sqrt(l*l+2*cf*l*fc)) / p
	return nextPow2(1.1 * sizeRaw)
}

// nextPow2 returns 2^ceil(log2(x)), with a floor of 1.
func nextPow2(x float64) uint32 {
	if x <= 1 {
		return 1
	}
	exp := math.Ceil(math.Log2(x))
	return uint32(math.Pow(2, exp))
}

// NumLightBuckets returns B = ceil(CL * (n / log2(n)^2 + 1)), the number
// of light buckets of spec.md §4.3.
func NumLightBuckets(n int, lightKeyBucketConstant float64) int {
	logn := math.Log2(float64(n))
	return int(math.Ceil(lightKeyBucketConstant * (float64(n)/(logn*logn) + 1)))
}

// LightBucketRange returns R = k / B, the hashed-key width of one light
// bucket.
func LightBucketRange(k uint64, numLightBuckets int) uint64 {
	if numLightBuckets <= 0 {
		numLightBuckets = 1
	}
	r := k / uint64(numLightBuckets)
	if r == 0 {
		r = 1
	}
	return r
}
