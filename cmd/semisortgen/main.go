// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The semisortgen command generates sequenceInt test files under one of
// the three distributions original_source/testData/sequenceData
// generates from: uniform, exponential, and Zipf.
package main

import (
	"github.com/aristanetworks/glog"
	"golang.org/x/exp/rand"

	flag "github.com/spf13/pflag"

	"github.com/aristanetworks/semisort/internal/seqio"
)

func main() {
	dist := flag.String("dist", "uniform", "distribution: uniform, exponential, or zipf")
	n := flag.IntP("n", "n", 1000, "number of integers to generate")
	rangeParam := flag.Float64("range", 1<<20,
		"uniform: exclusive upper bound of [0, range); exponential: rate lambda; "+
			"zipf: number of distinct ranks")
	skew := flag.Float64("skew", 1.5, "zipf: skew parameter s, must be > 1")
	seed := flag.Uint64("seed", 1, "RNG seed")
	out := flag.StringP("out", "o", "", "output file (required)")
	flag.Parse()

	if *out == "" {
		glog.Fatal("semisortgen: -out is required")
	}
	if *n < 0 {
		glog.Fatal("semisortgen: -n must be non-negative")
	}

	rng := rand.New(rand.NewSource(*seed))
	vals := make([]int64, *n)

	switch *dist {
	case "uniform":
		bound := uint64(*rangeParam)
		if bound == 0 {
			bound = 1
		}
		for i := range vals {
			vals[i] = int64(rng.Uint64() % bound)
		}
	case "exponential":
		lambda := *rangeParam
		if lambda <= 0 {
			lambda = 1
		}
		for i := range vals {
			vals[i] = int64(float64(*n) * rng.ExpFloat64() / lambda)
		}
	case "zipf":
		imax := uint64(*rangeParam)
		if imax == 0 {
			imax = 1
		}
		z := rand.NewZipf(rng, *skew, 1, imax)
		for i := range vals {
			vals[i] = int64(z.Uint64())
		}
	default:
		glog.Fatalf("semisortgen: unknown distribution %q (want uniform, exponential, or zipf)", *dist)
	}

	if err := seqio.Write(*out, vals); err != nil {
		glog.Fatalf("semisortgen: %v", err)
	}
	glog.Infof("semisortgen: wrote %d %s-distributed values to %s", *n, *dist, *out)
}
