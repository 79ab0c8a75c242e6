// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aristanetworks/semisort"
)

func TestLoadAppliesOverridesOnTopOfBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "semisort.hujson")
	const contents = `{
  // tightened for a high-skew workload
  "deltaThreshold": 6,
  "seed": 7, // fixed for reproducible benchmarking
}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	base := semisort.DefaultConfig()
	got, err := Load(path, base)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DeltaThreshold != 6 {
		t.Fatalf("DeltaThreshold = %v, want 6", got.DeltaThreshold)
	}
	if got.Seed != 7 {
		t.Fatalf("Seed = %v, want 7", got.Seed)
	}
	if got.FC != base.FC {
		t.Fatalf("FC = %v, want unchanged base value %v", got.FC, base.FC)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.hujson"), semisort.DefaultConfig())
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
