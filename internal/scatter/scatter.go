// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package scatter implements phase 6 and phase 7's scatter half of the
// core pipeline, spec.md §4.4: fill the scratch array A' in two passes,
// heavy keys first then light keys, each record claiming a randomly
// chosen slot in its bucket via CAS and linearly probing on collision.
//
// This uses variant (b) of spec.md §9's "Slot CAS" design note: instead
// of CAS'ing a sub-field of a generic Record in place (which Go cannot
// express without unsafe, since Record[O, K] is not a fixed-layout
// type), a parallel array of atomic claim words tracks which scratch
// slots are taken; the record itself is written to the corresponding
// slot of a plain, non-atomic array only after the claim succeeds. The
// claiming task is the sole writer of that slot's payload, so that
// later write needs no further synchronization — the same argument
// spec.md §5 makes for why relaxed ordering on hashed_key alone is
// sufficient.
package scatter

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/exp/rand"

	"github.com/aristanetworks/semisort/internal/bucket"
	"github.com/aristanetworks/semisort/internal/parallelfor"
	"github.com/aristanetworks/semisort/internal/recordtype"
)

// ErrProbeExhausted-shaped data is reported through this type so the
// root package can wrap it into a *semisort.InvariantError without
// scatter depending on the root package.
type ProbeExhaustedError struct {
	BucketID uint64
	Offset   uint32
	Size     uint32
}

func (e *ProbeExhaustedError) Error() string {
	return "probe exhausted in bucket"
}

// Scratch holds the working state scatter fills: Records is the output
// array A' (plain, written only by the claimant of each slot), Claims is
// the parallel atomic array recording which slots are taken. Retries
// counts failed CAS attempts across every insertion in both the heavy
// and light passes, for internal/metrics.Snapshot.ProbeRetries; it is
// only safe to read after the parallel_for barrier that follows Heavy
// or Light returns, same as every other field here.
type Scratch[O, K any] struct {
	Records []recordtype.Record[O, K]
	Claims  []uint64
	Retries uint64
}

// NewScratch allocates a Scratch of the given size, all slots empty.
func NewScratch[O, K any](size uint32) *Scratch[O, K] {
	return &Scratch[O, K]{
		Records: make([]recordtype.Record[O, K], size),
		Claims:  make([]uint64, size),
	}
}

// Options configures a scatter pass.
type Options struct {
	// PartitionSize is the number of input records each parallel_for
	// task handles; spec.md §4.4 uses log2(n).
	PartitionSize int
	// MaxLaps bounds how many full laps around a bucket's slot range a
	// task will make before giving up and reporting ProbeExhaustedError.
	// The reference implementation loops forever on overflow; spec.md
	// §4.8 requires a reimplementation to bound probe attempts instead.
	MaxLaps int
	Seed    uint64
}

// Heavy runs the heavy-key scatter pass of spec.md §4.4: records whose
// hashed key matches a heavy bucket are inserted there; all others are
// left for the light pass.
func Heavy[O, K any](ctx context.Context, records []recordtype.Record[O, K], scratch *Scratch[O, K], table *bucket.Table, opt Options) error {
	return forEachPartition(ctx, len(records), opt, func(rng *rand.Rand, bo backoffFactory, i int) error {
		r := records[i]
		b := table.Find(r.HashedKey)
		if b.IsSentinel() || !b.IsHeavy {
			return nil
		}
		return insert(scratch, b, r, rng, bo(), opt.MaxLaps)
	})
}

// Light runs the light-key scatter pass of spec.md §4.4: records with no
// heavy match are placed into the light bucket covering
// floor(hashedKey/bucketRange), skipping any record that did hit a
// heavy bucket (already placed by Heavy).
func Light[O, K any](ctx context.Context, records []recordtype.Record[O, K], scratch *Scratch[O, K], table *bucket.Table, bucketRange uint64, opt Options) error {
	return forEachPartition(ctx, len(records), opt, func(rng *rand.Rand, bo backoffFactory, i int) error {
		r := records[i]
		if heavy := table.Find(r.HashedKey); !heavy.IsSentinel() && heavy.IsHeavy {
			return nil
		}
		lightID := (r.HashedKey / bucketRange) * bucketRange
		b := table.Find(lightID)
		if b.IsSentinel() {
			return nil
		}
		return insert(scratch, b, r, rng, bo(), opt.MaxLaps)
	})
}

type backoffFactory func() *backoff.ExponentialBackOff

func newBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Microsecond
	bo.MaxInterval = 200 * time.Microsecond
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.25
	return bo
}

func forEachPartition(ctx context.Context, n int, opt Options, body func(rng *rand.Rand, bo backoffFactory, i int) error) error {
	if n == 0 {
		return nil
	}
	partitionSize := opt.PartitionSize
	if partitionSize < 1 {
		partitionSize = n
	}
	numPartitions := (n + partitionSize - 1) / partitionSize
	return parallelfor.For(ctx, numPartitions, func(p int) error {
		rng := rand.New(rand.NewSource(opt.Seed ^ uint64(p)*0x9E3779B97F4A7C15))
		start := p * partitionSize
		end := start + partitionSize
		if end > n {
			end = n
		}
		for i := start; i < end; i++ {
			if err := body(rng, newBackoff, i); err != nil {
				return err
			}
		}
		return nil
	})
}

// insert implements spec.md §4.4's insertion protocol: pick a random
// slot in [b.Offset, b.Offset+b.Size), CAS its claim word from 0 to
// record.HashedKey, write the record on success, linearly probe
// forward on failure, and re-pick a random start after a failed lap.
func insert[O, K any](scratch *Scratch[O, K], b bucket.Bucket, record recordtype.Record[O, K], rng *rand.Rand, bo *backoff.ExponentialBackOff, maxLaps int) error {
	if maxLaps < 1 {
		maxLaps = 1
	}
	idx := b.Offset + uint32(rng.Uint64()%uint64(b.Size))
	laps := 0
	for {
		if atomic.CompareAndSwapUint64(&scratch.Claims[idx], 0, record.HashedKey) {
			scratch.Records[idx] = record
			return nil
		}
		atomic.AddUint64(&scratch.Retries, 1)
		idx++
		if idx >= b.Offset+b.Size {
			laps++
			if laps >= maxLaps {
				return &ProbeExhaustedError{BucketID: b.BucketID, Offset: b.Offset, Size: b.Size}
			}
			time.Sleep(bo.NextBackOff())
			idx = b.Offset + uint32(rng.Uint64()%uint64(b.Size))
		}
	}
}
