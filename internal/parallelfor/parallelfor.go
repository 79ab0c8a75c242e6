// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package parallelfor implements the parallel_for primitive spec.md §6
// assumes is already available: "applies body(i) to each index,
// parallelising freely". Every phase of the core pipeline is built on
// top of this one helper, forking a bounded number of goroutines and
// joining before returning, matching the "structured, fork-join,
// happens-before at the join" concurrency model of spec.md §5.
package parallelfor

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/aristanetworks/semisort/sync/semaphore"
)

type concurrencyKey struct{}

// WithConcurrency returns a context that caps every ForChunks call
// made with it to at most n concurrent goroutines, overriding the
// GOMAXPROCS default. semisort.Config.Parallelism is threaded through
// to every phase this way.
func WithConcurrency(ctx context.Context, n int) context.Context {
	if n <= 0 {
		return ctx
	}
	return context.WithValue(ctx, concurrencyKey{}, n)
}

func concurrencyCap(ctx context.Context) int {
	if n, ok := ctx.Value(concurrencyKey{}).(int); ok {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// Chunks splits [0, n) into roughly equal contiguous chunks, one per
// available processor (capped at n), and is the default chunking used
// by For. The scatter passes get their log2(n)-sized partitions by
// calling For over partition indices and looping over each partition's
// records inside the body.
func Chunks(n int) int {
	if n <= 0 {
		return 0
	}
	c := runtime.GOMAXPROCS(0)
	if c > n {
		c = n
	}
	if c < 1 {
		c = 1
	}
	return c
}

// For applies body to every index in [0, hi), using Chunks(hi) goroutines.
// It returns the first error any body returned, after all goroutines have
// finished (a full fork-join barrier, no partial cancellation of sibling
// chunks beyond errgroup's context cancellation).
func For(ctx context.Context, hi int, body func(i int) error) error {
	return ForChunks(ctx, hi, Chunks(hi), body)
}

// ForChunks is For with an explicit number of chunks, for callers that
// need a specific grain size.
func ForChunks(ctx context.Context, hi, chunks int, body func(i int) error) error {
	if hi <= 0 {
		return nil
	}
	if chunks < 1 {
		chunks = 1
	}
	if chunks > hi {
		chunks = hi
	}

	grain := (hi + chunks - 1) / chunks
	concurrency := concurrencyCap(ctx)
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > chunks {
		concurrency = chunks
	}
	sem := semaphore.NewWeighted(int64(concurrency))
	for start := 0; start < hi; start += grain {
		start := start
		end := start + grain
		if end > hi {
			end = hi
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			for i := start; i < end; i++ {
				if err := body(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
