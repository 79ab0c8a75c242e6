// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The semisortcheck command verifies an in/out sequenceInt file pair
// for contiguity and frequency preservation, the Go counterpart of
// original_source/benchmarks/semiSort/bench/semisortCheck.C's
// checkSort: build a frequency table from the input, then walk the
// output consuming one key's full run at a time.
package main

import (
	"fmt"

	"github.com/aristanetworks/glog"
	"github.com/kylelemons/godebug/pretty"
	flag "github.com/spf13/pflag"

	"github.com/aristanetworks/semisort/internal/seqio"
)

// window returns out[max(0,i-3) : min(len(out),i+4)], pretty-printed,
// so a failure report shows the neighborhood of the offending index
// rather than just the single value.
func window(out []int64, i int) string {
	lo := i - 3
	if lo < 0 {
		lo = 0
	}
	hi := i + 4
	if hi > len(out) {
		hi = len(out)
	}
	return pretty.Sprint(out[lo:hi])
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		glog.Fatal("usage: semisortcheck <infile> <outfile>")
	}

	in, err := seqio.Read(args[0])
	if err != nil {
		glog.Fatalf("semisortcheck: %v", err)
	}
	out, err := seqio.Read(args[1])
	if err != nil {
		glog.Fatalf("semisortcheck: %v", err)
	}
	if len(in) != len(out) {
		glog.Fatalf("semisortcheck: in/out lengths don't match: %d vs %d", len(in), len(out))
	}

	if err := check(in, out); err != nil {
		glog.Fatalf("semisortcheck: %v", err)
	}
	fmt.Printf("semisortcheck: OK, %d records, contiguous and frequency-preserving\n", len(out))
}

// check mirrors semisortCheck.C's checkSort: it does not require out to
// be sorted by any total order over keys, only that every key's records
// form one contiguous run and that run's length matches its count in
// in.
func check(in, out []int64) error {
	freq := make(map[int64]int, len(in))
	for _, v := range in {
		freq[v]++
	}

	n := len(out)
	i := 0
	for i < n {
		key := out[i]
		remaining := freq[key]
		if remaining == 0 {
			return fmt.Errorf("failed at index %d: key %d not expected here "+
				"(absent from input, or its run was already consumed); out around %d: %s",
				i, key, i, window(out, i))
		}
		end := i + remaining
		if end > n {
			return fmt.Errorf("failed at index %d: run for key %d would overrun the output "+
				"(%d records expected, only %d remain); out around %d: %s",
				i, key, remaining, n-i, i, window(out, i))
		}
		for i < end {
			if out[i] != key {
				return fmt.Errorf("failed at index %d: expected key %d (mid-run), got %d; out around %d: %s",
					i, key, out[i], i, window(out, i))
			}
			i++
		}
		freq[key] = 0
	}
	return nil
}
