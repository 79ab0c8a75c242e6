// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package config loads tuning overrides for semisort.Config from a
// JSON-with-comments file, via tailscale/hujson, so cmd/semisortbench
// runs can be driven from a checked-in, annotated config file instead
// of a wall of flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/aristanetworks/semisort"
)

// File is the on-disk shape of a config file: every field of
// semisort.Config that is a plain tuning number, with the same names.
// Logger and Metrics are wired up by the caller instead, since neither
// has a sensible textual representation.
type File struct {
	HashRangeK                *float64 `json:"hashRangeK,omitempty"`
	SampleProbabilityConstant *float64 `json:"sampleProbabilityConstant,omitempty"`
	DeltaThreshold            *float64 `json:"deltaThreshold,omitempty"`
	FC                        *float64 `json:"fc,omitempty"`
	LightKeyBucketConstant    *float64 `json:"lightKeyBucketConstant,omitempty"`
	MaxProbeAttempts          *int     `json:"maxProbeAttempts,omitempty"`
	Parallelism               *int     `json:"parallelism,omitempty"`
	Seed                      *uint64  `json:"seed,omitempty"`
}

// Load reads a hujson (JSON with comments and trailing commas) file at
// path and applies any fields it sets on top of base, returning the
// merged Config. Fields File doesn't mention are left as base has them.
func Load(path string, base semisort.Config) (semisort.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return base, fmt.Errorf("config: %s: %w", path, err)
	}
	var f File
	if err := json.Unmarshal(std, &f); err != nil {
		return base, fmt.Errorf("config: %s: %w", path, err)
	}
	return f.apply(base), nil
}

func (f File) apply(cfg semisort.Config) semisort.Config {
	if f.HashRangeK != nil {
		cfg.HashRangeK = *f.HashRangeK
	}
	if f.SampleProbabilityConstant != nil {
		cfg.SampleProbabilityConstant = *f.SampleProbabilityConstant
	}
	if f.DeltaThreshold != nil {
		cfg.DeltaThreshold = *f.DeltaThreshold
	}
	if f.FC != nil {
		cfg.FC = *f.FC
	}
	if f.LightKeyBucketConstant != nil {
		cfg.LightKeyBucketConstant = *f.LightKeyBucketConstant
	}
	if f.MaxProbeAttempts != nil {
		cfg.MaxProbeAttempts = *f.MaxProbeAttempts
	}
	if f.Parallelism != nil {
		cfg.Parallelism = *f.Parallelism
	}
	if f.Seed != nil {
		cfg.Seed = *f.Seed
	}
	return cfg
}
