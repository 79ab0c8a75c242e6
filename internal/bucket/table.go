// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package bucket

import (
	"math/bits"
	"runtime"
	"sync"
)

// Table is a concurrent open-addressed map from bucket_id to Bucket. It
// supports parallel Insert (used once, during planning) and read-only
// Find (used repeatedly, during scatter). Entries are never updated or
// removed after insertion, which is all semisort ever needs from it.
type Table struct {
	shards []tableShard
	nshard uint64
}

type tableShard struct {
	mu      sync.RWMutex
	entries []shardEntry
	length  int
}

type shardEntry struct {
	key      uint64
	value    Bucket
	occupied bool
}

// mix64 is splitmix64's finalizer, used to spread bucket_id values
// across shards and probe positions evenly even though bucket_id is
// itself already hash-derived.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// NewTable creates a Table sized to hold approximately expectedEntries
// entries across a number of shards scaled to GOMAXPROCS, so concurrent
// inserts during planning rarely contend on the same shard lock.
func NewTable(expectedEntries int) *Table {
	if expectedEntries < 1 {
		expectedEntries = 1
	}
	nshard := nextPow2(uint64(runtime.GOMAXPROCS(0) * 4))
	if nshard < 1 {
		nshard = 1
	}
	perShard := expectedEntries/int(nshard) + 1
	cap := nextPow2(uint64(perShard*2 + 1))
	t := &Table{
		shards: make([]tableShard, nshard),
		nshard: nshard,
	}
	for i := range t.shards {
		t.shards[i].entries = make([]shardEntry, cap)
	}
	return t
}

func nextPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}

func (t *Table) shardFor(key uint64) *tableShard {
	return &t.shards[mix64(key)&(t.nshard-1)]
}

// Insert adds b under key b.BucketID. Safe for concurrent use across
// goroutines inserting distinct or colliding keys; per spec.md §3,
// bucket_id values are unique, so Insert never needs to merge.
func (t *Table) Insert(b Bucket) {
	s := t.shardFor(b.BucketID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.length >= len(s.entries)*9/10 {
		s.resizeLocked(len(s.entries) * 2)
	}
	s.setLocked(b.BucketID, b)
}

// Find returns the Bucket stored under key, or Sentinel on a miss. Safe
// for concurrent use, including concurrently with other Finds; must not
// be called concurrently with Insert on the same Table.
func (t *Table) Find(key uint64) Bucket {
	s := t.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return Sentinel
	}
	mask := len(s.entries) - 1
	pos := int(mix64(key)) & mask
	var dist int
	for {
		e := &s.entries[pos]
		if !e.occupied {
			return Sentinel
		}
		entDist := pos - int(mix64(e.key))&mask
		if entDist < 0 {
			entDist += len(s.entries)
		}
		if dist > entDist {
			return Sentinel
		}
		if e.key == key {
			return e.value
		}
		dist++
		pos = (pos + 1) & mask
	}
}

// Entries returns every Bucket stored in the table, in no particular
// order. Used for diagnostics and tests.
func (t *Table) Entries() []Bucket {
	var out []Bucket
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		for _, e := range s.entries {
			if e.occupied {
				out = append(out, e.value)
			}
		}
		s.mu.RUnlock()
	}
	return out
}

func (s *tableShard) setLocked(key uint64, value Bucket) {
	mask := len(s.entries) - 1
	pos := int(mix64(key)) & mask
	var dist int
	for {
		e := &s.entries[pos]
		if !e.occupied {
			s.entries[pos] = shardEntry{key: key, value: value, occupied: true}
			s.length++
			return
		}
		if e.key == key {
			e.value = value
			return
		}
		entDist := pos - int(mix64(e.key))&mask
		if entDist < 0 {
			entDist += len(s.entries)
		}
		if dist > entDist {
			key, e.key = e.key, key
			value, e.value = e.value, value
			dist = entDist
		}
		dist++
		pos = (pos + 1) & mask
	}
}

func (s *tableShard) resizeLocked(size int) {
	old := s.entries
	s.entries = make([]shardEntry, size)
	s.length = 0
	for _, e := range old {
		if e.occupied {
			s.setLocked(e.key, e.value)
		}
	}
}
