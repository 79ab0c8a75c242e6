// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package semisort

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/aristanetworks/semisort/internal/bucket"
	"github.com/aristanetworks/semisort/internal/classify"
	"github.com/aristanetworks/semisort/internal/hashphase"
	"github.com/aristanetworks/semisort/internal/lightsort"
	"github.com/aristanetworks/semisort/internal/metrics"
	"github.com/aristanetworks/semisort/internal/pack"
	"github.com/aristanetworks/semisort/internal/parallelfor"
	"github.com/aristanetworks/semisort/internal/planner"
	"github.com/aristanetworks/semisort/internal/recordtype"
	"github.com/aristanetworks/semisort/internal/sample"
	"github.com/aristanetworks/semisort/internal/scatter"
)

// Config carries the tuning constants of the core algorithm plus the
// ambient knobs every phase package needs (logging, metrics, seed,
// concurrency). The zero Config is not usable; start from
// DefaultConfig and override only what needs changing.
type Config struct {
	// HashRangeK sizes the hashed-key space k = floor(n^HashRangeK).
	// Must be > 2 for the heavy/light classification argument to hold.
	HashRangeK float64
	// SampleProbabilityConstant is Cs in p = min(Cs/log2(n), 0.25).
	SampleProbabilityConstant float64
	// DeltaThreshold is Δ in the heavy-key cutoff γ = Δ·log2(n).
	DeltaThreshold float64
	// FC is the Chernoff slack constant in the bucket capacity formula.
	FC float64
	// LightKeyBucketConstant is CL, scaling the number of light buckets.
	LightKeyBucketConstant float64
	// MaxProbeAttempts bounds how many full laps a scatter insertion
	// makes around its bucket before reporting a ProbeExhausted
	// InvariantError, rather than looping forever on overflow.
	MaxProbeAttempts int
	// Parallelism caps the number of in-flight goroutines; 0 means
	// runtime.GOMAXPROCS(0).
	Parallelism int
	// Seed drives every per-task RNG in sampling and scatter; 0 is a
	// valid seed, and process-global rand is never used. With a fixed
	// Seed, repeated calls on the same input produce the same sequence
	// of keys; which record of a run lands in which position within it
	// depends on how concurrent scatter tasks race for slots.
	Seed uint64
	// Logger receives an Errorf diagnostic when the final pack comes up
	// short; nil disables logging.
	Logger Logger
	// Metrics, if non-nil, receives one Snapshot per Sort/SortWithHash
	// call. *internal/metrics.Collector satisfies this.
	Metrics metrics.Recorder
}

// DefaultConfig returns the tuning constants spec.md §6 names as
// defaults: HashRangeK=2.25, SampleProbabilityConstant=3,
// DeltaThreshold=1, FC=1.25, LightKeyBucketConstant=2, plus
// MaxProbeAttempts=8, an ambient knob §6 doesn't name since the
// reference implementation has no bounded-probe concept at all
// (spec.md §4.8).
func DefaultConfig() Config {
	return Config{
		HashRangeK:                2.25,
		SampleProbabilityConstant: 3,
		DeltaThreshold:            1,
		FC:                        1.25,
		LightKeyBucketConstant:    2,
		MaxProbeAttempts:          8,
		Logger:                    nopLogger{},
	}
}

func (c Config) logger() Logger {
	if c.Logger == nil {
		return nopLogger{}
	}
	return c.Logger
}

func (c Config) partitionSize(n int) int {
	// spec.md §4.4 uses log2(n)-sized partitions for the scatter passes;
	// a floor of 1 keeps forEachPartition well defined for tiny n.
	size := 1
	for v := n; v > 1; v >>= 1 {
		size++
	}
	return size
}

// Sort permutes records in place so that all records sharing a Key
// occupy a contiguous run. It derives a 64-bit hashed key from each
// record's Key by formatting it and hashing the result; callers with a
// cheaper or more specialized way to hash K should call SortWithHash
// directly instead, since this fallback pays an allocation per record.
func Sort[O, K any](ctx context.Context, records []Record[O, K], cfg Config) error {
	h := hashphase.SipHashSeeded(cfg.Seed)
	return SortWithHash(ctx, records, func(k K) uint64 {
		return h(fmt.Sprintf("%v", k))
	}, cfg)
}

// SortWithHash is Sort, but using hash to derive each record's hashed
// key directly from its Key instead of a reflective fallback.
func SortWithHash[O, K any](ctx context.Context, records []Record[O, K], hash func(K) uint64, cfg Config) error {
	n := len(records)
	if n == 0 {
		return nil
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}
	ctx = parallelfor.WithConcurrency(ctx, cfg.Parallelism)
	log := cfg.logger()
	durations := make(map[string]time.Duration, 8)
	phaseStart := time.Now()
	phase := func(name string) {
		durations[name] = time.Since(phaseStart)
		phaseStart = time.Now()
	}

	// Phase 1: hash. Bridge into internal/recordtype.Record so every
	// phase package downstream of here shares one concrete type without
	// the root package importing any of them causing a cycle.
	work := make([]recordtype.Record[O, K], n)
	for i := range records {
		work[i] = recordtype.Record[O, K]{Obj: records[i].Obj, Key: records[i].Key}
	}
	k := hashphase.Range(n, cfg.HashRangeK)
	hk := make([]uint64, n)
	if err := hashphase.Run(ctx, n, k, func(i int) uint64 {
		return hash(records[i].Key)
	}, hk); err != nil {
		return err
	}
	for i := range work {
		work[i].HashedKey = hk[i]
	}
	phase("hash")

	// Phase 2+3: stratified sample, sample-sort.
	m, p := sample.Plan(n, cfg.SampleProbabilityConstant)
	if m <= 0 {
		// n too small to draw a meaningful sample: every record goes
		// into a single light bucket rather than tripping an invariant
		// (spec.md §4.8's non-assert alternative for tiny inputs).
		return sortSingleBucket(ctx, work, records, cfg, log, durations, phaseStart)
	}
	idx, err := sample.Select(ctx, n, m, p, cfg.Seed)
	if err != nil {
		return err
	}
	s := sample.Gather(hk, idx)
	sample.SortByHash(s)
	phase("sample")

	// Phase 4: classify + plan buckets.
	runs := classify.RunLengthEncode(s)
	gamma := classify.Gamma(n, cfg.DeltaThreshold)
	numLightBuckets := classify.NumLightBuckets(n, cfg.LightKeyBucketConstant)
	bucketRange := classify.LightBucketRange(k, numLightBuckets)
	cls := classify.Classify(runs, gamma, bucketRange)

	plan, err := planner.Build(ctx, n, cls.Heavy, cls.LightBucketCount, numLightBuckets, bucketRange, p, cfg.FC)
	if err != nil {
		return err
	}
	phase("plan")

	// Phase 5-7: scatter heavy, then light; sort+compact light buckets.
	scr := scatter.NewScratch[O, K](plan.ScratchSize)
	opt := scatter.Options{
		PartitionSize: cfg.partitionSize(n),
		MaxLaps:       cfg.MaxProbeAttempts,
		Seed:          cfg.Seed,
	}
	if err := scatter.Heavy(ctx, work, scr, plan.Table, opt); err != nil {
		return wrapScatterErr(err)
	}
	if err := scatter.Light(ctx, work, scr, plan.Table, bucketRange, opt); err != nil {
		return wrapScatterErr(err)
	}
	phase("scatter")

	lightBuckets := make([]bucket.Bucket, 0, numLightBuckets)
	for _, b := range plan.Buckets {
		if !b.IsHeavy {
			lightBuckets = append(lightBuckets, b)
		}
	}
	if err := lightsort.Run(ctx, scr.Records, lightBuckets); err != nil {
		return err
	}
	phase("lightsort")

	// Phase 8: pack the scratch array back down to n records.
	out := make([]recordtype.Record[O, K], n)
	written, err := pack.Run(ctx, scr.Records, out)
	if err != nil {
		return err
	}
	if written != n {
		log.Errorf("semisort: pack wrote %d records, want %d", written, n)
		return &InvariantError{Kind: ShortPack, Message: fmt.Sprintf("packed %d of %d records", written, n)}
	}
	for i := range records {
		records[i].Obj = out[i].Obj
		records[i].Key = out[i].Key
		records[i].HashedKey = out[i].HashedKey
	}
	phase("pack")

	if cfg.Metrics != nil {
		cfg.Metrics.Record(metrics.Snapshot{
			PhaseDurations:   durations,
			HeavyKeyCount:    len(cls.Heavy),
			LightBucketCount: numLightBuckets,
			ProbeRetries:     int(scr.Retries),
			PackedRecords:    written,
		})
	}
	return nil
}

// sortSingleBucket handles the tiny-n case where no sample could be
// drawn: every record is placed in one bucket sized for the whole
// input, then sorted and compacted like any light bucket. durations and
// phaseStart carry over the timing already collected for phase 1 by the
// caller, so the reported Snapshot covers the whole call, not just this
// tail.
func sortSingleBucket[O, K any](ctx context.Context, work []recordtype.Record[O, K], records []Record[O, K], cfg Config, log Logger, durations map[string]time.Duration, phaseStart time.Time) error {
	n := len(work)
	size := classify.BucketCapacity(n, n, 1, cfg.FC)
	scr := scatter.NewScratch[O, K](size)
	table := bucket.NewTable(1)
	table.Insert(bucket.Bucket{BucketID: 0, Offset: 0, Size: size, IsHeavy: false})
	opt := scatter.Options{
		PartitionSize: cfg.partitionSize(n),
		MaxLaps:       cfg.MaxProbeAttempts,
		Seed:          cfg.Seed,
	}
	// Every hashed key maps to the single light bucket at index 0 when
	// bucketRange exceeds every hashed key's value.
	if err := scatter.Light(ctx, work, scr, table, ^uint64(0), opt); err != nil {
		return wrapScatterErr(err)
	}
	durations["scatter"] = time.Since(phaseStart)
	phaseStart = time.Now()
	if err := lightsort.Run(ctx, scr.Records, []bucket.Bucket{{BucketID: 0, Offset: 0, Size: size}}); err != nil {
		return err
	}
	durations["lightsort"] = time.Since(phaseStart)
	phaseStart = time.Now()
	out := make([]recordtype.Record[O, K], n)
	written, err := pack.Run(ctx, scr.Records, out)
	if err != nil {
		return err
	}
	if written != n {
		log.Errorf("semisort: tiny-input pack wrote %d records, want %d", written, n)
		return &InvariantError{Kind: ShortPack, Message: fmt.Sprintf("packed %d of %d records", written, n)}
	}
	for i := range records {
		records[i].Obj = out[i].Obj
		records[i].Key = out[i].Key
		records[i].HashedKey = out[i].HashedKey
	}
	durations["pack"] = time.Since(phaseStart)

	if cfg.Metrics != nil {
		cfg.Metrics.Record(metrics.Snapshot{
			PhaseDurations:   durations,
			HeavyKeyCount:    0,
			LightBucketCount: 1,
			ProbeRetries:     int(scr.Retries),
			PackedRecords:    written,
		})
	}
	return nil
}

func wrapScatterErr(err error) error {
	if pe, ok := err.(*scatter.ProbeExhaustedError); ok {
		return &InvariantError{
			Kind:     ProbeExhausted,
			BucketID: pe.BucketID,
			Offset:   pe.Offset,
			Size:     pe.Size,
			Message:  "no free slot found within MaxProbeAttempts laps",
		}
	}
	return err
}

