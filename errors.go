// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package semisort

import "fmt"

// InvariantKind identifies which correctness invariant was violated.
// The algorithm is Las Vegas: with the sizing constants of Config left
// at their defaults, none of these should ever trigger; they exist so a
// reimplementation can fail fast and loud instead of looping forever the
// way the reference implementation does on bucket overflow.
type InvariantKind int

const (
	// ProbeExhausted means a scatter task failed to find an empty slot
	// within a bucket after MaxProbeAttempts tries.
	ProbeExhausted InvariantKind = iota
	// SampleTooSmall is unused by this implementation directly: a
	// sample count of zero is handled by routing every record into a
	// single light bucket (spec.md §4.8's non-assert alternative)
	// rather than failing. The kind is kept for callers building their
	// own classification on top of internal/classify's primitives, who
	// may want to fail fast instead.
	SampleTooSmall
	// ShortPack means the final pack produced fewer records than the
	// input, indicating records were lost rather than relocated.
	ShortPack
)

func (k InvariantKind) String() string {
	switch k {
	case ProbeExhausted:
		return "probe-exhausted"
	case SampleTooSmall:
		return "sample-too-small"
	case ShortPack:
		return "short-pack"
	default:
		return "unknown"
	}
}

// InvariantError reports a violation of one of semisort's correctness
// invariants. It carries structured fields rather than only a message,
// following the teacher's errs package convention of a fielded error
// struct over a stringly-typed one, so callers can branch on Kind and
// diagnostics can name the exact bucket involved.
type InvariantError struct {
	Kind     InvariantKind
	BucketID uint64
	Offset   uint32
	Size     uint32
	Message  string
}

func (e *InvariantError) Error() string {
	if e.Kind == ProbeExhausted {
		return fmt.Sprintf("semisort: %s: bucket %d [offset=%d size=%d]: %s",
			e.Kind, e.BucketID, e.Offset, e.Size, e.Message)
	}
	return fmt.Sprintf("semisort: %s: %s", e.Kind, e.Message)
}
